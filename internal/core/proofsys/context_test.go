package proofsys

import (
	"context"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkredit/v1/internal/core/infrastructure/crypto/hash"
	"github.com/zkredit/v1/internal/core/infrastructure/keystore"
	"github.com/zkredit/v1/internal/core/predicate"
)

// ============================================================================
// context.go 测试
// ============================================================================

// createTestContextManager 创建上下文管理器和配套的Groth16方案
func createTestContextManager(store *fakeSetupStore) (*ContextManager, ProvingScheme) {
	logger := &mockLogger{}
	scheme := NewGroth16Scheme(logger, ecc.BN254)

	var cm *ContextManager
	if store != nil {
		cm = NewContextManager(logger, hash.NewHashService(), store)
	} else {
		cm = NewContextManager(logger, hash.NewHashService(), nil)
	}
	return cm, scheme
}

// TestContextManager_Initialize 测试首次初始化
func TestContextManager_Initialize(t *testing.T) {
	cm, scheme := createTestContextManager(nil)
	def := mustResolve(t, "threshold")

	pctx, reused, err := cm.Initialize(context.Background(), def, scheme, 6)
	require.NoError(t, err)
	require.NotNil(t, pctx)
	assert.False(t, reused)

	assert.Equal(t, def, pctx.Definition)
	assert.Equal(t, 6, pctx.RowExponent)
	assert.Equal(t, SetupSourceGenerated, pctx.SetupSource)
	assert.Greater(t, pctx.ConstraintCount, 0)
	assert.NotNil(t, pctx.ConstraintSystem)
	assert.NotNil(t, pctx.ProvingKey)
	assert.NotNil(t, pctx.VerifyingKey)
	assert.Len(t, pctx.VKHash, 32)
	assert.NotEmpty(t, pctx.VKFingerprint)
	assert.False(t, pctx.CreatedAt.IsZero())
}

// TestContextManager_Initialize_FirstWins 测试首次初始化优先策略
func TestContextManager_Initialize_FirstWins(t *testing.T) {
	cm, scheme := createTestContextManager(nil)
	def := mustResolve(t, "threshold")
	ctx := context.Background()

	first, reused, err := cm.Initialize(ctx, def, scheme, 6)
	require.NoError(t, err)
	require.False(t, reused)

	// 同k：幂等返回同一个上下文实例
	second, reused, err := cm.Initialize(ctx, def, scheme, 6)
	require.NoError(t, err)
	assert.True(t, reused)
	assert.Same(t, first, second)

	// 异k：拒绝且既有上下文不变
	_, _, err = cm.Initialize(ctx, def, scheme, 8)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrAlreadyInitialized)

	current, err := cm.Get(def.Name)
	require.NoError(t, err)
	assert.Same(t, first, current)
}

// TestContextManager_Initialize_ContextCancelled 测试取消的上下文
func TestContextManager_Initialize_ContextCancelled(t *testing.T) {
	cm, scheme := createTestContextManager(nil)
	def := mustResolve(t, "threshold")

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := cm.Initialize(cancelled, def, scheme, 6)
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, cm.IsInitialized(def.Name))
}

// TestContextManager_GetAndList 测试上下文查询
func TestContextManager_GetAndList(t *testing.T) {
	cm, scheme := createTestContextManager(nil)
	ctx := context.Background()

	// 未初始化时的查询
	_, err := cm.Get(predicate.NameThreshold)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrSystemNotInitialized)
	assert.False(t, cm.IsInitialized(predicate.NameThreshold))
	assert.Empty(t, cm.List())

	_, _, err = cm.Initialize(ctx, mustResolve(t, "range"), scheme, 6)
	require.NoError(t, err)
	_, _, err = cm.Initialize(ctx, mustResolve(t, "threshold"), scheme, 6)
	require.NoError(t, err)

	assert.True(t, cm.IsInitialized(predicate.NameThreshold))
	// List按字典序返回
	assert.Equal(t, []string{predicate.NameRange, predicate.NameThreshold}, cm.List())
}

// TestContextManager_KeystoreRoundTrip 测试可信设置的密钥库持久化与恢复
func TestContextManager_KeystoreRoundTrip(t *testing.T) {
	store := newFakeSetupStore()
	def := mustResolve(t, "threshold")
	ctx := context.Background()

	// 1. 首次初始化：生成设置并持久化三个部件（约束系统、证明密钥、验证密钥）
	cm1, scheme := createTestContextManager(store)
	pctx1, _, err := cm1.Initialize(ctx, def, scheme, 6)
	require.NoError(t, err)
	assert.Equal(t, SetupSourceGenerated, pctx1.SetupSource)
	assert.Equal(t, 3, store.size())

	// 2. 新进程（新上下文管理器）：从密钥库恢复，跳过Setup
	cm2, scheme2 := createTestContextManager(store)
	pctx2, reused, err := cm2.Initialize(ctx, def, scheme2, 6)
	require.NoError(t, err)
	assert.False(t, reused)
	assert.Equal(t, SetupSourceKeystore, pctx2.SetupSource)
	assert.Equal(t, pctx1.VKFingerprint, pctx2.VKFingerprint)
	assert.Equal(t, pctx1.ConstraintCount, pctx2.ConstraintCount)

	// 3. 恢复的设置必须可用：完整走一遍证明与验证
	restore := silenceGnarkLogger()
	defer restore()

	field := scheme2.Curve().ScalarField()
	score := map[string]string{"score": "70"}
	threshold := map[string]string{"threshold": "70"}
	private, params, err := def.ParseValues(score, threshold)
	require.NoError(t, err)

	assignment, result, err := predicate.NewAssignment(def, field, private, params)
	require.NoError(t, err)
	require.True(t, result)

	fullWitness, err := frontend.NewWitness(assignment, field)
	require.NoError(t, err)

	proof, err := scheme2.Prove(pctx2.ConstraintSystem, pctx2.ProvingKey, fullWitness)
	require.NoError(t, err)

	publicAssignment, err := predicate.NewPublicAssignment(def, field, params, true)
	require.NoError(t, err)
	publicWitness, err := frontend.NewWitness(publicAssignment, field, frontend.PublicOnly())
	require.NoError(t, err)

	require.NoError(t, scheme2.Verify(proof, pctx2.VerifyingKey, publicWitness))
}

// TestContextManager_KeystoreCorruption 测试密钥库数据损坏时回退到重新生成
func TestContextManager_KeystoreCorruption(t *testing.T) {
	store := newFakeSetupStore()
	def := mustResolve(t, "threshold")
	ctx := context.Background()

	cm1, scheme := createTestContextManager(store)
	_, _, err := cm1.Initialize(ctx, def, scheme, 6)
	require.NoError(t, err)

	// 损坏证明密钥部件
	store.corrupt(keystore.SetupKey(def.Name, scheme.SchemeName(), CurveName(scheme.Curve()), 6, keystore.PartProvingKey))

	// 恢复失败不是致命错误：降级为重新生成
	cm2, scheme2 := createTestContextManager(store)
	pctx, _, err := cm2.Initialize(ctx, def, scheme2, 6)
	require.NoError(t, err)
	assert.Equal(t, SetupSourceGenerated, pctx.SetupSource)
}

// TestContextManager_KeystorePartialMiss 测试部件缺失视为未命中
func TestContextManager_KeystorePartialMiss(t *testing.T) {
	store := newFakeSetupStore()
	def := mustResolve(t, "threshold")
	ctx := context.Background()

	cm1, scheme := createTestContextManager(store)
	_, _, err := cm1.Initialize(ctx, def, scheme, 6)
	require.NoError(t, err)

	// 删除验证密钥部件后，加载视为未命中而非错误
	require.NoError(t, store.Delete(ctx,
		keystore.SetupKey(def.Name, scheme.SchemeName(), CurveName(scheme.Curve()), 6, keystore.PartVerifyingKey)))

	cm2, scheme2 := createTestContextManager(store)
	pctx, _, err := cm2.Initialize(ctx, def, scheme2, 6)
	require.NoError(t, err)
	assert.Equal(t, SetupSourceGenerated, pctx.SetupSource)
	// 重新生成后部件补齐
	assert.Equal(t, 3, store.size())
}
