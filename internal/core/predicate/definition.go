// Package predicate 定义零知识谓词目录：每个谓词的形状（私有列与公开参数列）、
// 电路外求值函数与电路结构，以及按名称/ID检索的注册表。
//
// 🧩 **核心概念**：
// - 谓词形状（PredicateShape）：命名的私有输入列与公开参数列，决定电路的列布局
// - 谓词定义（PredicateDefinition）：形状 + 求值函数 + 版本化名称（如threshold.v1）
// - 注册表：进程级谓词目录，内置四个谓词，支持扩展注册
//
// 内置谓词：
//   - threshold.v1:  score ≥ threshold（信用分达标）
//   - range.v1:      min ≤ value ≤ max（收入区间）
//   - commitment.v1: datum == commitment（承诺开启）
//   - ratio.v1:      success_count/count ≥ min_ratio/10000（还款率达标）
package predicate

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// 谓词数值ID（跨FFI边界使用的稳定标识）
const (
	IDThreshold  int32 = 1
	IDRange      int32 = 2
	IDCommitment int32 = 3
	IDRatio      int32 = 4
)

// 谓词版本化名称
const (
	NameThreshold  = "threshold.v1"
	NameRange      = "range.v1"
	NameCommitment = "commitment.v1"
	NameRatio      = "ratio.v1"
)

var (
	// ErrUnknownPredicate 请求的谓词未注册
	ErrUnknownPredicate = errors.New("未知的谓词")
	// ErrDuplicatePredicate 重复注册同名或同ID谓词
	ErrDuplicatePredicate = errors.New("谓词已注册")
	// ErrArityMismatch 输入值数量与谓词形状不符
	ErrArityMismatch = errors.New("输入数量与谓词形状不匹配")
	// ErrUnknownValue 命名输入缺失或存在未知名称
	ErrUnknownValue = errors.New("命名输入与谓词形状不匹配")
)

// PredicateShape 谓词的列布局：私有输入与公开参数的命名顺序
type PredicateShape struct {
	// PrivateNames 私有输入列名（按电路列顺序）
	PrivateNames []string
	// ParamNames 公开参数列名（按电路列顺序）
	ParamNames []string
}

// NumPrivate 私有输入列数
func (s PredicateShape) NumPrivate() int { return len(s.PrivateNames) }

// NumParams 公开参数列数
func (s PredicateShape) NumParams() int { return len(s.ParamNames) }

// PredicateDefinition 一个已注册谓词的完整定义
type PredicateDefinition struct {
	// ID 稳定数值标识（FFI与任务队列使用）
	ID int32
	// Name 版本化名称（密钥存储与API使用）
	Name string
	// Version 谓词语义版本号
	Version uint32
	// Shape 列布局
	Shape PredicateShape
	// Evaluate 电路外求值函数
	Evaluate EvalFunc
}

// ValidateValues 校验位置输入的数量与非空性
func (d *PredicateDefinition) ValidateValues(private, params []*big.Int) error {
	if err := d.validateParams(params); err != nil {
		return err
	}
	if len(private) != d.Shape.NumPrivate() {
		return errors.Wrapf(ErrArityMismatch, "谓词%s需要%d个私有输入，收到%d个",
			d.Name, d.Shape.NumPrivate(), len(private))
	}
	for i, v := range private {
		if v == nil {
			return errors.Wrapf(ErrUnknownValue, "私有输入%s为空", d.Shape.PrivateNames[i])
		}
	}
	return nil
}

// validateParams 校验公开参数的数量与非空性（验证路径只需参数）
func (d *PredicateDefinition) validateParams(params []*big.Int) error {
	if len(params) != d.Shape.NumParams() {
		return errors.Wrapf(ErrArityMismatch, "谓词%s需要%d个公开参数，收到%d个",
			d.Name, d.Shape.NumParams(), len(params))
	}
	for i, v := range params {
		if v == nil {
			return errors.Wrapf(ErrUnknownValue, "公开参数%s为空", d.Shape.ParamNames[i])
		}
	}
	return nil
}

// ParseValues 将命名的十进制字符串输入解析为按形状排序的标量切片
// 名称集合必须与形状完全一致：缺失、多余或无法解析的名称都报错
func (d *PredicateDefinition) ParseValues(private, params map[string]string) ([]*big.Int, []*big.Int, error) {
	privateValues, err := parseNamed(private, d.Shape.PrivateNames, "私有输入")
	if err != nil {
		return nil, nil, err
	}
	paramValues, err := parseNamed(params, d.Shape.ParamNames, "公开参数")
	if err != nil {
		return nil, nil, err
	}
	return privateValues, paramValues, nil
}

// ParseParams 仅解析公开参数（验证路径没有私有输入）
func (d *PredicateDefinition) ParseParams(params map[string]string) ([]*big.Int, error) {
	return parseNamed(params, d.Shape.ParamNames, "公开参数")
}

func parseNamed(values map[string]string, names []string, kind string) ([]*big.Int, error) {
	if len(values) != len(names) {
		return nil, errors.Wrapf(ErrArityMismatch, "%s需要%d个，收到%d个", kind, len(names), len(values))
	}
	out := make([]*big.Int, len(names))
	for i, name := range names {
		raw, ok := values[name]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownValue, "%s缺少%s", kind, name)
		}
		v, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownValue, "%s的%s不是十进制整数: %q", kind, name, raw)
		}
		out[i] = v
	}
	return out, nil
}

// ============================================================================
// 谓词注册表
// ============================================================================

// Registry 线程安全的谓词目录
type Registry struct {
	mutex  sync.RWMutex
	byName map[string]*PredicateDefinition
	byID   map[int32]*PredicateDefinition
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*PredicateDefinition),
		byID:   make(map[int32]*PredicateDefinition),
	}
}

// Register 注册谓词定义，名称或ID冲突时报错
func (r *Registry) Register(def *PredicateDefinition) error {
	if def == nil || def.Name == "" || def.Evaluate == nil {
		return errors.New("谓词定义不完整")
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.byName[def.Name]; exists {
		return errors.Wrapf(ErrDuplicatePredicate, "名称%s", def.Name)
	}
	if _, exists := r.byID[def.ID]; exists {
		return errors.Wrapf(ErrDuplicatePredicate, "ID %d", def.ID)
	}
	r.byName[def.Name] = def
	r.byID[def.ID] = def
	return nil
}

// Get 按版本化名称检索谓词
func (r *Registry) Get(name string) (*PredicateDefinition, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	def, ok := r.byName[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownPredicate, "名称%s", name)
	}
	return def, nil
}

// Resolve 解析谓词名称：先按版本化名称精确匹配，
// 再把名称当作基础名（如"threshold"）匹配到最高版本的谓词
func (r *Registry) Resolve(name string) (*PredicateDefinition, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if def, ok := r.byName[name]; ok {
		return def, nil
	}

	var best *PredicateDefinition
	for _, def := range r.byName {
		if baseName(def.Name) != name {
			continue
		}
		if best == nil || def.Version > best.Version {
			best = def
		}
	}
	if best == nil {
		return nil, errors.Wrapf(ErrUnknownPredicate, "名称%s", name)
	}
	return best, nil
}

// baseName 去掉版本化名称的".vN"后缀（"threshold.v1" -> "threshold"）
func baseName(name string) string {
	if idx := strings.LastIndex(name, ".v"); idx > 0 {
		return name[:idx]
	}
	return name
}

// GetByID 按数值ID检索谓词
func (r *Registry) GetByID(id int32) (*PredicateDefinition, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	def, ok := r.byID[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownPredicate, "ID %d", id)
	}
	return def, nil
}

// List 返回全部已注册谓词（按ID排序）
func (r *Registry) List() []*PredicateDefinition {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	defs := make([]*PredicateDefinition, 0, len(r.byID))
	for _, def := range r.byID {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}

// defaultRegistry 进程级默认注册表（内置谓词在init中注册）
var defaultRegistry = NewRegistry()

// DefaultRegistry 返回进程级默认注册表
func DefaultRegistry() *Registry { return defaultRegistry }

// Get 在默认注册表中按名称检索谓词
func Get(name string) (*PredicateDefinition, error) { return defaultRegistry.Get(name) }

// Resolve 在默认注册表中解析谓词名称（接受版本化名称或基础名）
func Resolve(name string) (*PredicateDefinition, error) { return defaultRegistry.Resolve(name) }

// GetByID 在默认注册表中按ID检索谓词
func GetByID(id int32) (*PredicateDefinition, error) { return defaultRegistry.GetByID(id) }

// List 返回默认注册表的全部谓词
func List() []*PredicateDefinition { return defaultRegistry.List() }

func mustRegister(def *PredicateDefinition) {
	if err := defaultRegistry.Register(def); err != nil {
		panic(fmt.Sprintf("内置谓词注册失败: %v", err))
	}
}

func init() {
	mustRegister(&PredicateDefinition{
		ID:      IDThreshold,
		Name:    NameThreshold,
		Version: 1,
		Shape: PredicateShape{
			PrivateNames: []string{"score"},
			ParamNames:   []string{"threshold"},
		},
		Evaluate: evalThreshold,
	})
	mustRegister(&PredicateDefinition{
		ID:      IDRange,
		Name:    NameRange,
		Version: 1,
		Shape: PredicateShape{
			PrivateNames: []string{"value"},
			ParamNames:   []string{"min", "max"},
		},
		Evaluate: evalRange,
	})
	mustRegister(&PredicateDefinition{
		ID:      IDCommitment,
		Name:    NameCommitment,
		Version: 1,
		Shape: PredicateShape{
			PrivateNames: []string{"datum"},
			ParamNames:   []string{"commitment"},
		},
		Evaluate: evalCommitment,
	})
	mustRegister(&PredicateDefinition{
		ID:      IDRatio,
		Name:    NameRatio,
		Version: 1,
		Shape: PredicateShape{
			PrivateNames: []string{"count", "success_count"},
			ParamNames:   []string{"min_ratio"},
		},
		Evaluate: evalRatio,
	})
}
