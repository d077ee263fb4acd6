package predicate

import (
	"bytes"
	"math/big"
)

// ============================================================================
// 谓词求值器（电路外布尔计算）
// ============================================================================
//
// 🎯 **单一事实来源**：
// 谓词的布尔结果在电路外由这里的纯函数计算，电路内仅约束结果的布尔性
// （见circuit.go的局限说明）。见证赋值与验证时的公开实例重建走同一条
// 代码路径，证明方与验证方对结果的计算从构造上逐位一致。
//
// 📋 **整数域解码规则**：
// - 所有标量先规约为标量域的规范剩余（Mod r，非负）
// - 序关系比较使用定宽大端字节表示的字典序，对规范剩余等价于整数序
//   （多字节值如256≥255比较正确）
// - 相等性比较直接比较规范剩余
// - 比率运算在整数域精确进行：successCount×10000÷count，count=0时比率为0
//
// ============================================================================

// RatioScale 比率谓词的定点放大倍数（8000表示80.00%）
const RatioScale = 10000

// EvalFunc 谓词求值函数
// field为活动曲线的标量域模数；private/params的长度已由调用方按形状校验
type EvalFunc func(field *big.Int, private, params []*big.Int) (bool, error)

// canonicalResidue 将标量规约为域内规范剩余（非负且小于field）
func canonicalResidue(field, v *big.Int) *big.Int {
	return new(big.Int).Mod(v, field)
}

// canonicalBytes 返回规范剩余的定宽大端字节表示
// 宽度取域模数的字节宽度（bn254为32字节）
func canonicalBytes(field, v *big.Int) []byte {
	width := (field.BitLen() + 7) / 8
	buf := make([]byte, width)
	canonicalResidue(field, v).FillBytes(buf)
	return buf
}

// compareField 按定宽字节表示比较两个标量，返回-1/0/1
func compareField(field, a, b *big.Int) int {
	return bytes.Compare(canonicalBytes(field, a), canonicalBytes(field, b))
}

// evalThreshold 阈值比较：score ≥ threshold
func evalThreshold(field *big.Int, private, params []*big.Int) (bool, error) {
	return compareField(field, private[0], params[0]) >= 0, nil
}

// evalRange 区间包含：min ≤ value ≤ max
func evalRange(field *big.Int, private, params []*big.Int) (bool, error) {
	value := private[0]
	lo, hi := params[0], params[1]
	return compareField(field, value, lo) >= 0 && compareField(field, value, hi) <= 0, nil
}

// evalCommitment 承诺相等：datum == commitment（域内直接相等）
func evalCommitment(field *big.Int, private, params []*big.Int) (bool, error) {
	return canonicalResidue(field, private[0]).Cmp(canonicalResidue(field, params[0])) == 0, nil
}

// evalRatio 比率阈值：(successCount×10000÷count) ≥ minRatio
// count=0时比率按0处理（显式的零分母规则，不报错）
// 放大后的比率可能超出域宽，这里用精确整数比较而非域内字节比较
func evalRatio(field *big.Int, private, params []*big.Int) (bool, error) {
	count := canonicalResidue(field, private[0])
	successCount := canonicalResidue(field, private[1])
	minRatio := canonicalResidue(field, params[0])

	ratio := new(big.Int)
	if count.Sign() != 0 {
		ratio.Mul(successCount, big.NewInt(RatioScale))
		ratio.Div(ratio, count)
	}
	return ratio.Cmp(minRatio) >= 0, nil
}
