package proofsys

import (
	"github.com/consensys/gnark-crypto/ecc"
)

// supportedCurves 支持的椭圆曲线（配置名 → gnark曲线ID）
var supportedCurves = map[string]ecc.ID{
	"bn254":     ecc.BN254,
	"bls12-381": ecc.BLS12_381,
	"bls12-377": ecc.BLS12_377,
	"bw6-761":   ecc.BW6_761,
}

// CurveFromName 将配置中的曲线名解析为gnark曲线ID
func CurveFromName(name string) (ecc.ID, error) {
	curveID, ok := supportedCurves[name]
	if !ok {
		return ecc.UNKNOWN, WrapUnsupportedSchemeError("curve " + name)
	}
	return curveID, nil
}

// CurveName 返回曲线ID对应的配置名
func CurveName(curveID ecc.ID) string {
	for name, id := range supportedCurves {
		if id == curveID {
			return name
		}
	}
	return curveID.String()
}

// SupportedCurveNames 返回支持的曲线名列表（无序）
func SupportedCurveNames() []string {
	names := make([]string, 0, len(supportedCurves))
	for name := range supportedCurves {
		names = append(names, name)
	}
	return names
}
