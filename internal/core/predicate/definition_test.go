package predicate

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuiltinCatalog 测试内置谓词目录完整性
func TestBuiltinCatalog(t *testing.T) {
	defs := List()
	require.Len(t, defs, 4)

	// 按ID排序
	assert.Equal(t, IDThreshold, defs[0].ID)
	assert.Equal(t, IDRange, defs[1].ID)
	assert.Equal(t, IDCommitment, defs[2].ID)
	assert.Equal(t, IDRatio, defs[3].ID)

	// 名称与ID检索指向同一定义
	for _, def := range defs {
		byName, err := Get(def.Name)
		require.NoError(t, err)
		byID, err := GetByID(def.ID)
		require.NoError(t, err)
		assert.Same(t, byName, byID)
	}
}

// TestRegistryErrors 测试注册表的错误路径
func TestRegistryErrors(t *testing.T) {
	registry := NewRegistry()

	def := &PredicateDefinition{
		ID:      100,
		Name:    "custom.v1",
		Version: 1,
		Shape:   PredicateShape{PrivateNames: []string{"x"}, ParamNames: []string{"y"}},
		Evaluate: func(field *big.Int, private, params []*big.Int) (bool, error) {
			return true, nil
		},
	}

	// 1. 首次注册成功
	require.NoError(t, registry.Register(def))

	// 2. 同名重复注册失败
	dup := *def
	dup.ID = 101
	assert.ErrorIs(t, registry.Register(&dup), ErrDuplicatePredicate)

	// 3. 同ID重复注册失败
	dup2 := *def
	dup2.Name = "other.v1"
	assert.ErrorIs(t, registry.Register(&dup2), ErrDuplicatePredicate)

	// 4. 不完整定义被拒绝
	assert.Error(t, registry.Register(&PredicateDefinition{Name: "incomplete.v1"}))
	assert.Error(t, registry.Register(nil))

	// 5. 未注册名称与ID
	_, err := registry.Get("missing.v1")
	assert.ErrorIs(t, err, ErrUnknownPredicate)
	_, err = registry.GetByID(999)
	assert.ErrorIs(t, err, ErrUnknownPredicate)
}

// TestParseValues 测试命名输入解析
func TestParseValues(t *testing.T) {
	def, err := Get(NameRange)
	require.NoError(t, err)

	t.Run("完整命名输入", func(t *testing.T) {
		private, params, err := def.ParseValues(
			map[string]string{"value": "50000"},
			map[string]string{"min": "30000", "max": "80000"},
		)
		require.NoError(t, err)
		require.Len(t, private, 1)
		require.Len(t, params, 2)
		assert.Equal(t, int64(50000), private[0].Int64())
		assert.Equal(t, int64(30000), params[0].Int64())
		assert.Equal(t, int64(80000), params[1].Int64())
	})

	t.Run("缺少命名输入", func(t *testing.T) {
		_, _, err := def.ParseValues(
			map[string]string{"value": "50000"},
			map[string]string{"min": "30000"},
		)
		assert.ErrorIs(t, err, ErrArityMismatch)
	})

	t.Run("名称拼写错误", func(t *testing.T) {
		_, _, err := def.ParseValues(
			map[string]string{"val": "50000"},
			map[string]string{"min": "30000", "max": "80000"},
		)
		assert.ErrorIs(t, err, ErrUnknownValue)
	})

	t.Run("多余的名称", func(t *testing.T) {
		_, _, err := def.ParseValues(
			map[string]string{"value": "50000", "extra": "1"},
			map[string]string{"min": "30000", "max": "80000"},
		)
		assert.ErrorIs(t, err, ErrArityMismatch)
	})

	t.Run("非十进制输入", func(t *testing.T) {
		_, _, err := def.ParseValues(
			map[string]string{"value": "0xff"},
			map[string]string{"min": "30000", "max": "80000"},
		)
		assert.ErrorIs(t, err, ErrUnknownValue)
	})

	t.Run("大十进制整数", func(t *testing.T) {
		private, _, err := def.ParseValues(
			map[string]string{"value": "123456789012345678901234567890"},
			map[string]string{"min": "0", "max": "1"},
		)
		require.NoError(t, err)
		expected, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
		assert.Equal(t, 0, private[0].Cmp(expected))
	})
}

// TestShapeAccessors 测试形状访问器
func TestShapeAccessors(t *testing.T) {
	def, err := Get(NameRatio)
	require.NoError(t, err)

	assert.Equal(t, 2, def.Shape.NumPrivate())
	assert.Equal(t, 1, def.Shape.NumParams())
	assert.Equal(t, []string{"count", "success_count"}, def.Shape.PrivateNames)
	assert.Equal(t, []string{"min_ratio"}, def.Shape.ParamNames)
}

// TestResolve 测试名称解析：版本化名称精确匹配，基础名匹配最高版本
func TestResolve(t *testing.T) {
	t.Run("版本化名称精确匹配", func(t *testing.T) {
		def, err := Resolve(NameThreshold)
		require.NoError(t, err)
		assert.Equal(t, NameThreshold, def.Name)
	})

	t.Run("基础名匹配", func(t *testing.T) {
		for base, want := range map[string]string{
			"threshold":  NameThreshold,
			"range":      NameRange,
			"commitment": NameCommitment,
			"ratio":      NameRatio,
		} {
			def, err := Resolve(base)
			require.NoError(t, err, "基础名%s", base)
			assert.Equal(t, want, def.Name)
		}
	})

	t.Run("基础名取最高版本", func(t *testing.T) {
		registry := NewRegistry()
		v1 := &PredicateDefinition{
			ID: 100, Name: "custom.v1", Version: 1,
			Shape:    PredicateShape{PrivateNames: []string{"x"}, ParamNames: []string{"y"}},
			Evaluate: evalThreshold,
		}
		v2 := &PredicateDefinition{
			ID: 101, Name: "custom.v2", Version: 2,
			Shape:    PredicateShape{PrivateNames: []string{"x"}, ParamNames: []string{"y"}},
			Evaluate: evalThreshold,
		}
		require.NoError(t, registry.Register(v1))
		require.NoError(t, registry.Register(v2))

		def, err := registry.Resolve("custom")
		require.NoError(t, err)
		assert.Same(t, v2, def)

		// 精确名称仍可取到旧版本
		def, err = registry.Resolve("custom.v1")
		require.NoError(t, err)
		assert.Same(t, v1, def)
	})

	t.Run("未知名称", func(t *testing.T) {
		_, err := Resolve("nonexistent")
		assert.ErrorIs(t, err, ErrUnknownPredicate)
	})
}
