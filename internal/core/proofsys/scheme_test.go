package proofsys

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkredit/v1/internal/core/predicate"
)

// ============================================================================
// scheme.go / curve.go 测试
// ============================================================================

// TestCurveFromName 测试曲线名解析
func TestCurveFromName(t *testing.T) {
	testCases := []struct {
		name    string
		curveID ecc.ID
	}{
		{"bn254", ecc.BN254},
		{"bls12-381", ecc.BLS12_381},
		{"bls12-377", ecc.BLS12_377},
		{"bw6-761", ecc.BW6_761},
	}

	for _, tc := range testCases {
		curveID, err := CurveFromName(tc.name)
		require.NoError(t, err, "曲线%s解析失败", tc.name)
		assert.Equal(t, tc.curveID, curveID)
		assert.Equal(t, tc.name, CurveName(curveID))
	}
}

// TestCurveFromName_Unknown 测试未支持的曲线名
func TestCurveFromName_Unknown(t *testing.T) {
	curveID, err := CurveFromName("secp256k1")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnsupportedScheme)
	assert.Equal(t, ecc.UNKNOWN, curveID)
}

// TestCurveName_Fallback 测试未映射曲线ID回退到gnark名称
func TestCurveName_Fallback(t *testing.T) {
	assert.Equal(t, ecc.BLS24_315.String(), CurveName(ecc.BLS24_315))
}

// TestSupportedCurveNames 测试支持的曲线名列表
func TestSupportedCurveNames(t *testing.T) {
	names := SupportedCurveNames()
	assert.ElementsMatch(t, []string{"bn254", "bls12-381", "bls12-377", "bw6-761"}, names)
}

// TestProvingSchemeRegistry 测试证明方案注册表
func TestProvingSchemeRegistry(t *testing.T) {
	registry := NewProvingSchemeRegistry(&mockLogger{}, ecc.BN254)

	// 内置方案已注册
	assert.ElementsMatch(t, []string{"groth16", "plonk"}, registry.ListSchemes())
	assert.True(t, registry.IsSchemeSupported("groth16"))
	assert.True(t, registry.IsSchemeSupported("plonk"))
	assert.False(t, registry.IsSchemeSupported("stark"))

	scheme, err := registry.GetScheme("groth16")
	require.NoError(t, err)
	assert.Equal(t, "groth16", scheme.SchemeName())
	assert.Equal(t, ecc.BN254, scheme.Curve())

	_, err = registry.GetScheme("stark")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnsupportedScheme)

	// nil方案注册是空操作
	registry.RegisterScheme(nil)
	assert.Len(t, registry.ListSchemes(), 2)
}

// TestScheme_ProveVerifyRoundTrip 测试两种方案的证明、序列化与验证闭环
func TestScheme_ProveVerifyRoundTrip(t *testing.T) {
	restore := silenceGnarkLogger()
	defer restore()

	schemes := []ProvingScheme{
		NewGroth16Scheme(&mockLogger{}, ecc.BN254),
		NewPlonKScheme(&mockLogger{}, ecc.BN254),
	}

	for _, scheme := range schemes {
		t.Run(scheme.SchemeName(), func(t *testing.T) {
			def := mustResolve(t, "threshold")
			field := scheme.Curve().ScalarField()

			// 1. 编译电路并生成可信设置
			compiled, err := frontend.Compile(field, scheme.GetBuilder(), predicate.NewCircuit(def))
			require.NoError(t, err)

			pk, vk, err := scheme.Setup(compiled)
			require.NoError(t, err)

			// 2. 生成证明
			private, params, err := def.ParseValues(
				map[string]string{"score": "70"}, map[string]string{"threshold": "70"})
			require.NoError(t, err)

			assignment, result, err := predicate.NewAssignment(def, field, private, params)
			require.NoError(t, err)
			require.True(t, result)

			fullWitness, err := frontend.NewWitness(assignment, field)
			require.NoError(t, err)

			proof, err := scheme.Prove(compiled, pk, fullWitness)
			require.NoError(t, err)

			// 3. 证明序列化闭环后验证通过
			proofBytes, err := scheme.SerializeProof(proof)
			require.NoError(t, err)
			require.NotEmpty(t, proofBytes)

			restoredProof, err := scheme.DeserializeProof(proofBytes)
			require.NoError(t, err)

			publicAssignment, err := predicate.NewPublicAssignment(def, field, params, true)
			require.NoError(t, err)
			publicWitness, err := frontend.NewWitness(publicAssignment, field, frontend.PublicOnly())
			require.NoError(t, err)

			require.NoError(t, scheme.Verify(restoredProof, vk, publicWitness))

			// 4. 验证密钥序列化闭环后仍能验证
			vkBytes, err := scheme.SerializeVerifyingKey(vk)
			require.NoError(t, err)
			restoredVk, err := scheme.DeserializeVerifyingKey(vkBytes)
			require.NoError(t, err)
			require.NoError(t, scheme.Verify(restoredProof, restoredVk, publicWitness))

			// 5. 约束系统与证明密钥序列化闭环后仍能生成可验证的证明
			ccsBytes, err := scheme.SerializeConstraintSystem(compiled)
			require.NoError(t, err)
			restoredCcs, err := scheme.DeserializeConstraintSystem(ccsBytes)
			require.NoError(t, err)
			assert.Equal(t, compiled.GetNbConstraints(), restoredCcs.GetNbConstraints())

			pkBytes, err := scheme.SerializeProvingKey(pk)
			require.NoError(t, err)
			restoredPk, err := scheme.DeserializeProvingKey(pkBytes)
			require.NoError(t, err)

			secondProof, err := scheme.Prove(restoredCcs, restoredPk, fullWitness)
			require.NoError(t, err)
			require.NoError(t, scheme.Verify(secondProof, vk, publicWitness))
		})
	}
}

// TestScheme_DeserializeGarbage 测试反序列化垃圾字节
func TestScheme_DeserializeGarbage(t *testing.T) {
	garbage := []byte("既不是证明也不是密钥")

	schemes := []ProvingScheme{
		NewGroth16Scheme(&mockLogger{}, ecc.BN254),
		NewPlonKScheme(&mockLogger{}, ecc.BN254),
	}

	for _, scheme := range schemes {
		t.Run(scheme.SchemeName(), func(t *testing.T) {
			_, err := scheme.DeserializeProof(garbage)
			require.Error(t, err)

			_, err = scheme.DeserializeVerifyingKey(garbage)
			require.Error(t, err)

			_, err = scheme.DeserializeConstraintSystem(garbage)
			require.Error(t, err)
		})
	}
}

// TestScheme_TypeMismatch 测试类型擦除接口收到错误类型
func TestScheme_TypeMismatch(t *testing.T) {
	groth16Scheme := NewGroth16Scheme(&mockLogger{}, ecc.BN254)

	_, err := groth16Scheme.SerializeProof("不是证明对象")
	require.Error(t, err)

	_, err = groth16Scheme.SerializeVerifyingKey(42)
	require.Error(t, err)

	_, err = groth16Scheme.SerializeProvingKey(nil)
	require.Error(t, err)
}
