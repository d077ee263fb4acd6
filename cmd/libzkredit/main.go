// Package main 提供证明系统的C ABI边界
//
// 以 -buildmode=c-shared 或 c-archive 构建后供移动端/桌面端宿主调用。
// 跨边界的值只使用基元标量与数组：谓词用int32稳定ID选择，
// 输入值以十进制C字符串数组按谓词形状顺序传入，证明为原始字节。
//
// ⚠️ **内存约定**：每个返回的zkr_proof_result及其内部缓冲区由本库
// malloc分配，调用方恰好调用一次zkr_free_proof_result释放；
// zkr_version返回的字符串用zkr_free_string释放。
package main

/*
#include <stdlib.h>
#include <stdint.h>
#include <stddef.h>

// 证明生成结果。success为1时proof_data/proof_len有效，error_message为NULL；
// 失败时error_message指向malloc分配的UTF-8错误描述。
typedef struct {
    unsigned char  success;
    unsigned char *proof_data;
    size_t         proof_len;
    char          *error_message;
} zkr_proof_result;
*/
import "C"

import (
	"context"
	"sync"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/zkredit/v1/internal/app"
	"github.com/zkredit/v1/internal/core/predicate"
	"github.com/zkredit/v1/internal/core/proofsys"
	"github.com/zkredit/v1/pkg/types"
	"github.com/zkredit/v1/pkg/version"
)

// C边界错误码
const (
	codeVerified       = 1
	codeNotVerified    = 0
	codeMalformedInput = -1
	codeNotInitialized = -2
	codeKeyGeneration  = -3
	codeProofFailure   = -4
	codeInternal       = -5
)

// 包级互斥锁与惰性装配的服务实例
//
// C边界没有调用方可持有的上下文对象，这里是全局状态的唯一例外；
// Go侧API（Manager）不依赖任何全局。互斥锁同时串行化全部导出调用，
// 宿主无需自行加锁。
var (
	boundaryMu sync.Mutex
	boundary   *app.Local
)

// ensureBoundary 惰性装配本地服务（须持有boundaryMu）
func ensureBoundary() (*app.Local, error) {
	if boundary != nil {
		return boundary, nil
	}
	local, err := app.NewLocal("")
	if err != nil {
		return nil, err
	}
	boundary = local
	return boundary, nil
}

// errorCode 把Go错误映射为C边界错误码
func errorCode(err error) C.int32_t {
	switch {
	case errors.Is(err, proofsys.ErrMalformedInput),
		errors.Is(err, proofsys.ErrUnsupportedPredicate),
		errors.Is(err, predicate.ErrUnknownPredicate),
		errors.Is(err, predicate.ErrArityMismatch),
		errors.Is(err, predicate.ErrUnknownValue):
		return codeMalformedInput
	case errors.Is(err, proofsys.ErrSystemNotInitialized):
		return codeNotInitialized
	case errors.Is(err, proofsys.ErrKeyGenerationFailure):
		return codeKeyGeneration
	case errors.Is(err, proofsys.ErrProofGenerationFailure):
		return codeProofFailure
	default:
		return codeInternal
	}
}

// namedValues 把形状顺序的十进制C字符串数组映射为命名输入
//
// 空指针或数量与形状不符时返回ErrMalformedInput，任何解引用之前检查。
func namedValues(values **C.char, valuesLen C.size_t, names []string, kind string) (map[string]string, error) {
	if int(valuesLen) != len(names) {
		return nil, errors.Wrapf(proofsys.ErrMalformedInput,
			"%s需要%d个值，收到%d个", kind, len(names), int(valuesLen))
	}
	if len(names) == 0 {
		return map[string]string{}, nil
	}
	if values == nil {
		return nil, errors.Wrapf(proofsys.ErrMalformedInput, "%s指针为空", kind)
	}

	slice := unsafe.Slice(values, int(valuesLen))
	named := make(map[string]string, len(names))
	for i, name := range names {
		if slice[i] == nil {
			return nil, errors.Wrapf(proofsys.ErrMalformedInput, "%s第%d个值为空指针", kind, i)
		}
		named[name] = C.GoString(slice[i])
	}
	return named, nil
}

// newProofResult 分配一个零值结果结构
func newProofResult() *C.zkr_proof_result {
	result := (*C.zkr_proof_result)(C.malloc(C.size_t(unsafe.Sizeof(C.zkr_proof_result{}))))
	result.success = 0
	result.proof_data = nil
	result.proof_len = 0
	result.error_message = nil
	return result
}

// failProofResult 填充失败结果
func failProofResult(result *C.zkr_proof_result, err error) *C.zkr_proof_result {
	result.error_message = C.CString(err.Error())
	return result
}

//export zkr_initialize_system
func zkr_initialize_system(rowExponent C.int32_t) C.int32_t {
	boundaryMu.Lock()
	defer boundaryMu.Unlock()

	local, err := ensureBoundary()
	if err != nil {
		return errorCode(err)
	}
	if _, err := local.Manager.InitializeAll(context.Background(), int(rowExponent)); err != nil {
		return errorCode(err)
	}
	return codeVerified
}

//export zkr_generate_proof
func zkr_generate_proof(
	predicateID C.int32_t,
	private **C.char, privateLen C.size_t,
	params **C.char, paramsLen C.size_t,
) *C.zkr_proof_result {
	boundaryMu.Lock()
	defer boundaryMu.Unlock()

	result := newProofResult()

	def, err := predicate.GetByID(int32(predicateID))
	if err != nil {
		return failProofResult(result, err)
	}
	witness, err := namedValues(private, privateLen, def.Shape.PrivateNames, "私有输入")
	if err != nil {
		return failProofResult(result, err)
	}
	publicParams, err := namedValues(params, paramsLen, def.Shape.ParamNames, "公开参数")
	if err != nil {
		return failProofResult(result, err)
	}

	local, err := ensureBoundary()
	if err != nil {
		return failProofResult(result, err)
	}
	artifact, err := local.Manager.Prove(context.Background(), &types.ProofRequest{
		Predicate: def.Name,
		Witness:   witness,
		Params:    publicParams,
	})
	if err != nil {
		return failProofResult(result, err)
	}

	result.success = 1
	result.proof_data = (*C.uchar)(C.CBytes(artifact.ProofData))
	result.proof_len = C.size_t(len(artifact.ProofData))
	return result
}

//export zkr_verify_proof
func zkr_verify_proof(
	predicateID C.int32_t,
	proof *C.uchar, proofLen C.size_t,
	params **C.char, paramsLen C.size_t,
	claimed C.uchar,
) C.int32_t {
	boundaryMu.Lock()
	defer boundaryMu.Unlock()

	if proof == nil || proofLen == 0 {
		return codeMalformedInput
	}
	def, err := predicate.GetByID(int32(predicateID))
	if err != nil {
		return errorCode(err)
	}
	publicParams, err := namedValues(params, paramsLen, def.Shape.ParamNames, "公开参数")
	if err != nil {
		return errorCode(err)
	}

	local, err := ensureBoundary()
	if err != nil {
		return errorCode(err)
	}

	proofData := C.GoBytes(unsafe.Pointer(proof), C.int(proofLen))
	verified, err := local.Manager.Verify(context.Background(), &types.VerifyRequest{
		Predicate: def.Name,
		Params:    publicParams,
		ProofData: proofData,
		Claimed:   types.BoolPtr(claimed != 0),
	})
	if err != nil {
		return errorCode(err)
	}
	if verified {
		return codeVerified
	}
	return codeNotVerified
}

//export zkr_mock_evaluate
func zkr_mock_evaluate(
	predicateID C.int32_t,
	private **C.char, privateLen C.size_t,
	params **C.char, paramsLen C.size_t,
	claimed C.uchar,
) C.int32_t {
	boundaryMu.Lock()
	defer boundaryMu.Unlock()

	def, err := predicate.GetByID(int32(predicateID))
	if err != nil {
		return errorCode(err)
	}
	witness, err := namedValues(private, privateLen, def.Shape.PrivateNames, "私有输入")
	if err != nil {
		return errorCode(err)
	}
	publicParams, err := namedValues(params, paramsLen, def.Shape.ParamNames, "公开参数")
	if err != nil {
		return errorCode(err)
	}

	local, err := ensureBoundary()
	if err != nil {
		return errorCode(err)
	}
	mock, err := local.Manager.MockEvaluateDetailed(context.Background(), &types.ProofRequest{
		Predicate: def.Name,
		Witness:   witness,
		Params:    publicParams,
	})
	if err != nil {
		return errorCode(err)
	}
	if mock.ConstraintsSatisfied && mock.Satisfied == (claimed != 0) {
		return codeVerified
	}
	return codeNotVerified
}

//export zkr_free_proof_result
func zkr_free_proof_result(result *C.zkr_proof_result) {
	if result == nil {
		return
	}
	if result.proof_data != nil {
		C.free(unsafe.Pointer(result.proof_data))
	}
	if result.error_message != nil {
		C.free(unsafe.Pointer(result.error_message))
	}
	C.free(unsafe.Pointer(result))
}

//export zkr_version
func zkr_version() *C.char {
	return C.CString(version.Version)
}

//export zkr_free_string
func zkr_free_string(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}

// c-archive/c-shared构建模式要求main入口
func main() {}
