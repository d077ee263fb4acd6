package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadOptions_EmbeddedDefaults 测试无配置文件时回退到嵌入默认配置
func TestLoadOptions_EmbeddedDefaults(t *testing.T) {
	// 切到空目录，屏蔽./configs/config.json查找
	t.Chdir(t.TempDir())

	options := LoadOptions("")
	appConfig := options.GetAppConfig()

	require.NotNil(t, appConfig)
	require.NotNil(t, appConfig.ProofSystem)
	assert.Equal(t, "groth16", *appConfig.ProofSystem.Scheme)
	assert.Equal(t, "bn254", *appConfig.ProofSystem.Curve)
}

// TestLoadOptions_ExplicitPath 测试显式路径优先
func TestLoadOptions_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "custom.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{
		"app_name": "zkredit-test",
		"proof_system": {"scheme": "plonk", "curve": "bls12-381"}
	}`), 0o644))

	options := LoadOptions(configPath)
	appConfig := options.GetAppConfig()

	require.NotNil(t, appConfig.AppName)
	assert.Equal(t, "zkredit-test", *appConfig.AppName)
	assert.Equal(t, "plonk", *appConfig.ProofSystem.Scheme)
	assert.Equal(t, "bls12-381", *appConfig.ProofSystem.Curve)
}

// TestLoadOptions_EnvVariable 测试ZKR_CONFIG环境变量
func TestLoadOptions_EnvVariable(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "env.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{"app_name": "from-env"}`), 0o644))
	t.Setenv("ZKR_CONFIG", configPath)

	options := LoadOptions("")
	appConfig := options.GetAppConfig()

	require.NotNil(t, appConfig.AppName)
	assert.Equal(t, "from-env", *appConfig.AppName)
}

// TestLoadOptions_BrokenFile 测试损坏的配置文件回退到嵌入默认配置
func TestLoadOptions_BrokenFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(configPath, []byte("{not json"), 0o644))

	options := LoadOptions(configPath)
	appConfig := options.GetAppConfig()

	// 回退后仍是可用配置
	require.NotNil(t, appConfig)
	require.NotNil(t, appConfig.ProofSystem)
	assert.Equal(t, "groth16", *appConfig.ProofSystem.Scheme)
}

// TestLoadOptions_EnsureDataDirectories 测试数据目录预创建
func TestLoadOptions_EnsureDataDirectories(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	keystorePath := filepath.Join(dir, "data", "keystore")
	configPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{
		"data_dir": "`+dataDir+`",
		"keystore": {"enabled": true, "path": "`+keystorePath+`"}
	}`), 0o644))

	LoadOptions(configPath)

	info, err := os.Stat(keystorePath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

// TestNewLocal 测试无fx的本地装配
func TestNewLocal(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{
		"data_dir": "`+filepath.Join(dir, "data")+`",
		"log": {"level": "error"},
		"proof_system": {"row_exponent": 6, "device_tier": "low_end_mobile", "enable_verify_cache": false},
		"keystore": {"enabled": false}
	}`), 0o644))

	local, err := NewLocal(configPath)
	require.NoError(t, err)
	defer func() { _ = local.Close() }()

	require.NotNil(t, local.Manager)
	assert.Equal(t, "groth16", local.Manager.SchemeName())
	assert.Equal(t, "bn254", local.Manager.CurveName())
	assert.False(t, local.Manager.Status().Initialized)
}
