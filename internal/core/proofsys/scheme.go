package proofsys

import (
	"bytes"
	"fmt"
	"sync"

	// 基础设施
	"github.com/zkredit/v1/pkg/interfaces/infrastructure/log"

	// gnark ZK库
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/consensys/gnark/test/unsafekzg"
)

// ============================================================================
// 证明方案抽象
// ============================================================================
//
// 🎯 **目的**：
//   - 抽象证明方案接口，统一Groth16与PlonK的生命周期操作
//   - 方案实例绑定具体曲线，序列化接口无需额外传递曲线参数
//   - 为密钥库持久化提供约束系统与证明密钥的序列化能力
//
// 📋 **设计原则**：
//   - 方案抽象：定义统一的证明方案接口
//   - 配置驱动：方案与曲线都由配置选择，实例创建后不可变
//   - 类型擦除：Proof/ProvingKey/VerifyingKey以interface{}承载，
//     方案实现内部做类型断言
//
// ============================================================================

// ProvingScheme 证明方案接口
type ProvingScheme interface {
	// SchemeName 返回方案名称
	SchemeName() string

	// Curve 返回方案绑定的椭圆曲线
	Curve() ecc.ID

	// GetBuilder 获取电路构建器（groth16→r1cs，plonk→scs）
	GetBuilder() frontend.NewBuilder

	// Setup 生成可信设置（proving key和verifying key）
	Setup(compiledCircuit constraint.ConstraintSystem) (ProvingKey, VerifyingKey, error)

	// Prove 生成证明
	Prove(compiledCircuit constraint.ConstraintSystem, provingKey ProvingKey, witness witness.Witness) (Proof, error)

	// Verify 验证证明
	Verify(proof Proof, verifyingKey VerifyingKey, publicWitness witness.Witness) error

	// SerializeProof 序列化证明
	SerializeProof(proof Proof) ([]byte, error)

	// DeserializeProof 反序列化证明
	DeserializeProof(data []byte) (Proof, error)

	// SerializeVerifyingKey 序列化验证密钥
	SerializeVerifyingKey(vk VerifyingKey) ([]byte, error)

	// DeserializeVerifyingKey 反序列化验证密钥
	DeserializeVerifyingKey(data []byte) (VerifyingKey, error)

	// SerializeProvingKey 序列化证明密钥（密钥库持久化）
	SerializeProvingKey(pk ProvingKey) ([]byte, error)

	// DeserializeProvingKey 反序列化证明密钥
	// ⚠️ 使用UnsafeReadFrom跳过子群检查：仅用于本地密钥库的可信数据
	DeserializeProvingKey(data []byte) (ProvingKey, error)

	// SerializeConstraintSystem 序列化约束系统（密钥库持久化）
	SerializeConstraintSystem(ccs constraint.ConstraintSystem) ([]byte, error)

	// DeserializeConstraintSystem 反序列化约束系统
	DeserializeConstraintSystem(data []byte) (constraint.ConstraintSystem, error)
}

// Proof 证明接口（类型擦除）
type Proof interface{}

// ProvingKey 证明密钥接口（类型擦除）
type ProvingKey interface{}

// VerifyingKey 验证密钥接口（类型擦除）
type VerifyingKey interface{}

// ============================================================================
// Groth16方案
// ============================================================================

// Groth16Scheme Groth16证明方案实现
//
// 默认方案：证明最小（约200字节）、验证最快，代价是每个电路需要独立的可信设置
type Groth16Scheme struct {
	logger  log.Logger
	curveID ecc.ID
}

// NewGroth16Scheme 创建绑定指定曲线的Groth16证明方案
func NewGroth16Scheme(logger log.Logger, curveID ecc.ID) *Groth16Scheme {
	return &Groth16Scheme{
		logger:  logger,
		curveID: curveID,
	}
}

// SchemeName 返回方案名称
func (s *Groth16Scheme) SchemeName() string {
	return "groth16"
}

// Curve 返回方案绑定的椭圆曲线
func (s *Groth16Scheme) Curve() ecc.ID {
	return s.curveID
}

// GetBuilder 获取电路构建器
func (s *Groth16Scheme) GetBuilder() frontend.NewBuilder {
	return r1cs.NewBuilder
}

// Setup 生成可信设置
func (s *Groth16Scheme) Setup(compiledCircuit constraint.ConstraintSystem) (ProvingKey, VerifyingKey, error) {
	pk, vk, err := groth16.Setup(compiledCircuit)
	if err != nil {
		return nil, nil, fmt.Errorf("Groth16 Setup失败: %w", err)
	}
	return pk, vk, nil
}

// Prove 生成证明
func (s *Groth16Scheme) Prove(compiledCircuit constraint.ConstraintSystem, provingKey ProvingKey, witness witness.Witness) (Proof, error) {
	groth16Pk, ok := provingKey.(groth16.ProvingKey)
	if !ok {
		return nil, fmt.Errorf("无效的Groth16证明密钥类型")
	}

	proof, err := groth16.Prove(compiledCircuit, groth16Pk, witness)
	if err != nil {
		return nil, fmt.Errorf("Groth16 Prove失败: %w", err)
	}
	return proof, nil
}

// Verify 验证证明
func (s *Groth16Scheme) Verify(proof Proof, verifyingKey VerifyingKey, publicWitness witness.Witness) error {
	groth16Proof, ok := proof.(groth16.Proof)
	if !ok {
		return fmt.Errorf("无效的Groth16证明类型")
	}

	vk, ok := verifyingKey.(groth16.VerifyingKey)
	if !ok {
		return fmt.Errorf("无效的Groth16验证密钥类型")
	}

	return groth16.Verify(groth16Proof, vk, publicWitness)
}

// SerializeProof 序列化证明
func (s *Groth16Scheme) SerializeProof(proof Proof) ([]byte, error) {
	groth16Proof, ok := proof.(groth16.Proof)
	if !ok {
		return nil, fmt.Errorf("无效的Groth16证明类型")
	}

	var buf bytes.Buffer
	_, err := groth16Proof.WriteTo(&buf)
	if err != nil {
		return nil, fmt.Errorf("序列化Groth16证明失败: %w", err)
	}

	return buf.Bytes(), nil
}

// DeserializeProof 反序列化证明
func (s *Groth16Scheme) DeserializeProof(data []byte) (Proof, error) {
	proof := groth16.NewProof(s.curveID)
	reader := bytes.NewReader(data)

	_, err := proof.ReadFrom(reader)
	if err != nil {
		return nil, fmt.Errorf("反序列化Groth16证明失败: %w", err)
	}
	return proof, nil
}

// SerializeVerifyingKey 序列化验证密钥
func (s *Groth16Scheme) SerializeVerifyingKey(vk VerifyingKey) ([]byte, error) {
	groth16Vk, ok := vk.(groth16.VerifyingKey)
	if !ok {
		return nil, fmt.Errorf("无效的Groth16验证密钥类型")
	}

	var buf bytes.Buffer
	_, err := groth16Vk.WriteTo(&buf)
	if err != nil {
		return nil, fmt.Errorf("序列化Groth16验证密钥失败: %w", err)
	}

	return buf.Bytes(), nil
}

// DeserializeVerifyingKey 反序列化验证密钥
func (s *Groth16Scheme) DeserializeVerifyingKey(data []byte) (VerifyingKey, error) {
	vk := groth16.NewVerifyingKey(s.curveID)
	reader := bytes.NewReader(data)

	_, err := vk.ReadFrom(reader)
	if err != nil {
		return nil, fmt.Errorf("反序列化Groth16验证密钥失败: %w", err)
	}
	return vk, nil
}

// SerializeProvingKey 序列化证明密钥
func (s *Groth16Scheme) SerializeProvingKey(pk ProvingKey) ([]byte, error) {
	groth16Pk, ok := pk.(groth16.ProvingKey)
	if !ok {
		return nil, fmt.Errorf("无效的Groth16证明密钥类型")
	}

	var buf bytes.Buffer
	_, err := groth16Pk.WriteTo(&buf)
	if err != nil {
		return nil, fmt.Errorf("序列化Groth16证明密钥失败: %w", err)
	}

	return buf.Bytes(), nil
}

// DeserializeProvingKey 反序列化证明密钥
// 数据来自本地密钥库（进程自己写入），UnsafeReadFrom跳过子群检查换取加载速度
func (s *Groth16Scheme) DeserializeProvingKey(data []byte) (ProvingKey, error) {
	pk := groth16.NewProvingKey(s.curveID)
	reader := bytes.NewReader(data)

	_, err := pk.UnsafeReadFrom(reader)
	if err != nil {
		return nil, fmt.Errorf("反序列化Groth16证明密钥失败: %w", err)
	}
	return pk, nil
}

// SerializeConstraintSystem 序列化约束系统
func (s *Groth16Scheme) SerializeConstraintSystem(ccs constraint.ConstraintSystem) ([]byte, error) {
	var buf bytes.Buffer
	_, err := ccs.WriteTo(&buf)
	if err != nil {
		return nil, fmt.Errorf("序列化R1CS约束系统失败: %w", err)
	}
	return buf.Bytes(), nil
}

// DeserializeConstraintSystem 反序列化约束系统
func (s *Groth16Scheme) DeserializeConstraintSystem(data []byte) (constraint.ConstraintSystem, error) {
	ccs := groth16.NewCS(s.curveID)
	reader := bytes.NewReader(data)

	_, err := ccs.ReadFrom(reader)
	if err != nil {
		return nil, fmt.Errorf("反序列化R1CS约束系统失败: %w", err)
	}
	return ccs, nil
}

// ============================================================================
// PlonK方案
// ============================================================================

// PlonKScheme PlonK证明方案实现
//
// ⚠️ **实验性方案**：SRS由gnark的unsafekzg按电路规模即席生成，
// toxic waste在本进程内存中出现过，仅适用于开发与测试环境。
// 生产部署需要替换为公共仪式产物（如Aztec ignition）加载路径。
type PlonKScheme struct {
	logger  log.Logger
	curveID ecc.ID
}

// NewPlonKScheme 创建绑定指定曲线的PlonK证明方案
func NewPlonKScheme(logger log.Logger, curveID ecc.ID) *PlonKScheme {
	return &PlonKScheme{
		logger:  logger,
		curveID: curveID,
	}
}

// SchemeName 返回方案名称
func (s *PlonKScheme) SchemeName() string {
	return "plonk"
}

// Curve 返回方案绑定的椭圆曲线
func (s *PlonKScheme) Curve() ecc.ID {
	return s.curveID
}

// GetBuilder 获取电路构建器
func (s *PlonKScheme) GetBuilder() frontend.NewBuilder {
	return scs.NewBuilder
}

// Setup 生成可信设置
func (s *PlonKScheme) Setup(compiledCircuit constraint.ConstraintSystem) (ProvingKey, VerifyingKey, error) {
	// 按电路约束规模生成规范SRS与Lagrange SRS（开发级，见类型注释）
	srs, srsLagrange, err := unsafekzg.NewSRS(compiledCircuit)
	if err != nil {
		return nil, nil, fmt.Errorf("PlonK SRS生成失败: %w", err)
	}

	pk, vk, err := plonk.Setup(compiledCircuit, srs, srsLagrange)
	if err != nil {
		return nil, nil, fmt.Errorf("PlonK Setup失败: %w", err)
	}
	return pk, vk, nil
}

// Prove 生成证明
func (s *PlonKScheme) Prove(compiledCircuit constraint.ConstraintSystem, provingKey ProvingKey, witness witness.Witness) (Proof, error) {
	plonkPk, ok := provingKey.(plonk.ProvingKey)
	if !ok {
		return nil, fmt.Errorf("无效的PlonK证明密钥类型")
	}

	proof, err := plonk.Prove(compiledCircuit, plonkPk, witness)
	if err != nil {
		return nil, fmt.Errorf("PlonK Prove失败: %w", err)
	}
	return proof, nil
}

// Verify 验证证明
func (s *PlonKScheme) Verify(proof Proof, verifyingKey VerifyingKey, publicWitness witness.Witness) error {
	plonkProof, ok := proof.(plonk.Proof)
	if !ok {
		return fmt.Errorf("无效的PlonK证明类型")
	}

	vk, ok := verifyingKey.(plonk.VerifyingKey)
	if !ok {
		return fmt.Errorf("无效的PlonK验证密钥类型")
	}

	return plonk.Verify(plonkProof, vk, publicWitness)
}

// SerializeProof 序列化证明
func (s *PlonKScheme) SerializeProof(proof Proof) ([]byte, error) {
	plonkProof, ok := proof.(plonk.Proof)
	if !ok {
		return nil, fmt.Errorf("无效的PlonK证明类型")
	}

	var buf bytes.Buffer
	_, err := plonkProof.WriteTo(&buf)
	if err != nil {
		return nil, fmt.Errorf("序列化PlonK证明失败: %w", err)
	}

	return buf.Bytes(), nil
}

// DeserializeProof 反序列化证明
func (s *PlonKScheme) DeserializeProof(data []byte) (Proof, error) {
	proof := plonk.NewProof(s.curveID)
	reader := bytes.NewReader(data)

	_, err := proof.ReadFrom(reader)
	if err != nil {
		return nil, fmt.Errorf("反序列化PlonK证明失败: %w", err)
	}
	return proof, nil
}

// SerializeVerifyingKey 序列化验证密钥
func (s *PlonKScheme) SerializeVerifyingKey(vk VerifyingKey) ([]byte, error) {
	plonkVk, ok := vk.(plonk.VerifyingKey)
	if !ok {
		return nil, fmt.Errorf("无效的PlonK验证密钥类型")
	}

	var buf bytes.Buffer
	_, err := plonkVk.WriteTo(&buf)
	if err != nil {
		return nil, fmt.Errorf("序列化PlonK验证密钥失败: %w", err)
	}

	return buf.Bytes(), nil
}

// DeserializeVerifyingKey 反序列化验证密钥
func (s *PlonKScheme) DeserializeVerifyingKey(data []byte) (VerifyingKey, error) {
	vk := plonk.NewVerifyingKey(s.curveID)
	reader := bytes.NewReader(data)

	_, err := vk.ReadFrom(reader)
	if err != nil {
		return nil, fmt.Errorf("反序列化PlonK验证密钥失败: %w", err)
	}
	return vk, nil
}

// SerializeProvingKey 序列化证明密钥
func (s *PlonKScheme) SerializeProvingKey(pk ProvingKey) ([]byte, error) {
	plonkPk, ok := pk.(plonk.ProvingKey)
	if !ok {
		return nil, fmt.Errorf("无效的PlonK证明密钥类型")
	}

	var buf bytes.Buffer
	_, err := plonkPk.WriteTo(&buf)
	if err != nil {
		return nil, fmt.Errorf("序列化PlonK证明密钥失败: %w", err)
	}

	return buf.Bytes(), nil
}

// DeserializeProvingKey 反序列化证明密钥
func (s *PlonKScheme) DeserializeProvingKey(data []byte) (ProvingKey, error) {
	pk := plonk.NewProvingKey(s.curveID)
	reader := bytes.NewReader(data)

	_, err := pk.UnsafeReadFrom(reader)
	if err != nil {
		return nil, fmt.Errorf("反序列化PlonK证明密钥失败: %w", err)
	}
	return pk, nil
}

// SerializeConstraintSystem 序列化约束系统
func (s *PlonKScheme) SerializeConstraintSystem(ccs constraint.ConstraintSystem) ([]byte, error) {
	var buf bytes.Buffer
	_, err := ccs.WriteTo(&buf)
	if err != nil {
		return nil, fmt.Errorf("序列化SCS约束系统失败: %w", err)
	}
	return buf.Bytes(), nil
}

// DeserializeConstraintSystem 反序列化约束系统
func (s *PlonKScheme) DeserializeConstraintSystem(data []byte) (constraint.ConstraintSystem, error) {
	ccs := plonk.NewCS(s.curveID)
	reader := bytes.NewReader(data)

	_, err := ccs.ReadFrom(reader)
	if err != nil {
		return nil, fmt.Errorf("反序列化SCS约束系统失败: %w", err)
	}
	return ccs, nil
}

// ============================================================================
// 证明方案注册表
// ============================================================================

// ProvingSchemeRegistry 证明方案注册表
//
// 注册表内的方案全部绑定同一条曲线（管理器的活动曲线）
type ProvingSchemeRegistry struct {
	logger  log.Logger
	schemes map[string]ProvingScheme
	mutex   sync.RWMutex
}

// NewProvingSchemeRegistry 创建证明方案注册表并注册内置方案
func NewProvingSchemeRegistry(logger log.Logger, curveID ecc.ID) *ProvingSchemeRegistry {
	registry := &ProvingSchemeRegistry{
		logger:  logger,
		schemes: make(map[string]ProvingScheme),
	}

	// 注册默认方案
	registry.RegisterScheme(NewGroth16Scheme(logger, curveID))
	registry.RegisterScheme(NewPlonKScheme(logger, curveID))

	return registry
}

// RegisterScheme 注册证明方案
func (r *ProvingSchemeRegistry) RegisterScheme(scheme ProvingScheme) {
	if scheme == nil {
		return
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	schemeName := scheme.SchemeName()
	r.schemes[schemeName] = scheme

	if r.logger != nil {
		r.logger.Debugf("注册证明方案: %s (curve=%s)", schemeName, CurveName(scheme.Curve()))
	}
}

// GetScheme 获取证明方案
func (r *ProvingSchemeRegistry) GetScheme(schemeName string) (ProvingScheme, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	scheme, exists := r.schemes[schemeName]
	if !exists {
		return nil, WrapUnsupportedSchemeError(schemeName)
	}

	return scheme, nil
}

// ListSchemes 列出所有注册的方案
func (r *ProvingSchemeRegistry) ListSchemes() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	schemes := make([]string, 0, len(r.schemes))
	for name := range r.schemes {
		schemes = append(schemes, name)
	}

	return schemes
}

// IsSchemeSupported 检查方案是否支持
func (r *ProvingSchemeRegistry) IsSchemeSupported(schemeName string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	_, exists := r.schemes[schemeName]
	return exists
}
