package predicate

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/pkg/errors"
)

// ============================================================================
// 谓词电路（gnark约束系统）
// ============================================================================
//
// 📋 **列到gnark的映射**：
// - 私有输入列 → secret变量（Private切片，无标签即secret）
// - 公开参数列 → public变量（Params切片，gnark:",public"）
// - 布尔结果   → public变量（Result，0或1）
//
// 切片长度在电路实例创建时由谓词形状固定（gnark要求编译期已知的列数），
// 因此电路实例一律通过NewCircuit/NewAssignment工厂构造，不手写字面量。
//
// ⚠️ **约束系统的已知局限（设计决策，非缺陷）**：
// 电路内唯一的约束是Result的布尔性：Result×(Result−1)=0。谓词语义
// （比较、区间、比率）在电路外由求值器计算后赋值给Result，电路不
// 约束Result与Private/Params之间的关系。这意味着证明所担保的命题是
// "证明方知道一组私有输入，且声称的布尔结果是0或1"，而非"该布尔
// 结果确由这些输入按谓词计算得出"。诚实证明方场景下（证明方自己
// 的设备计算自己的数据）该担保已满足产品需求；将比较逻辑下沉为
// 电路内约束（api.Cmp+api.IsZero门）是已知的强化路径，会显著增加
// 各谓词的约束数并需要重新生成全部设置密钥。
//
// ============================================================================

// PredicateCircuit 谓词电路：列布局由谓词形状在构造时固定
type PredicateCircuit struct {
	// 🔒 私有输入（secret列，按形状的PrivateNames顺序）
	Private []frontend.Variable

	// 🔓 公开参数（按形状的ParamNames顺序）
	Params []frontend.Variable `gnark:",public"`

	// 🔓 谓词布尔结果（0或1）
	Result frontend.Variable `gnark:",public"`
}

// Define 实现电路约束逻辑
func (c *PredicateCircuit) Define(api frontend.API) error {
	// 私有输入与参数各进入一个乘法门，保证列被约束系统引用
	for _, v := range c.Private {
		_ = api.Mul(v, v)
	}
	for _, v := range c.Params {
		_ = api.Mul(v, v)
	}

	// Result×(Result−1)=0
	api.AssertIsBoolean(c.Result)
	return nil
}

// NewCircuit 创建结构电路实例（变量未赋值，供编译使用）
func NewCircuit(def *PredicateDefinition) *PredicateCircuit {
	return &PredicateCircuit{
		Private: make([]frontend.Variable, def.Shape.NumPrivate()),
		Params:  make([]frontend.Variable, def.Shape.NumParams()),
	}
}

// NewAssignment 创建完整见证赋值并返回电路外计算的布尔结果
// 所有标量先规约为field的规范剩余再赋值，求值与赋值走同一规约路径
func NewAssignment(def *PredicateDefinition, field *big.Int, private, params []*big.Int) (*PredicateCircuit, bool, error) {
	if err := def.ValidateValues(private, params); err != nil {
		return nil, false, err
	}

	circuit := NewCircuit(def)
	for i, v := range private {
		circuit.Private[i] = canonicalResidue(field, v)
	}
	for i, v := range params {
		circuit.Params[i] = canonicalResidue(field, v)
	}

	result, err := def.Evaluate(field, private, params)
	if err != nil {
		return nil, false, errors.Wrapf(err, "谓词%s求值失败", def.Name)
	}
	if result {
		circuit.Result = 1
	} else {
		circuit.Result = 0
	}
	return circuit, result, nil
}

// NewPublicAssignment 创建仅含公开列的赋值（验证路径使用）
// Private保持未赋值，配合frontend.PublicOnly()构建公开见证
func NewPublicAssignment(def *PredicateDefinition, field *big.Int, params []*big.Int, claimed bool) (*PredicateCircuit, error) {
	if err := def.validateParams(params); err != nil {
		return nil, err
	}

	circuit := NewCircuit(def)
	for i, v := range params {
		circuit.Params[i] = canonicalResidue(field, v)
	}
	if claimed {
		circuit.Result = 1
	} else {
		circuit.Result = 0
	}
	return circuit, nil
}
