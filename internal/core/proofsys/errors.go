// Package proofsys provides error definitions for the proof system lifecycle.
package proofsys

import (
	"errors"
	"fmt"
)

// ============================================================================
//                            证明系统错误定义
// ============================================================================

var (
	// ErrSystemNotInitialized 谓词尚未初始化（无可用的证明上下文）
	ErrSystemNotInitialized = errors.New("proof system not initialized")

	// ErrAlreadyInitialized 谓词已以不同参数初始化（首次初始化优先）
	ErrAlreadyInitialized = errors.New("proof system already initialized")

	// ErrKeyGenerationFailure 可信设置生成失败
	ErrKeyGenerationFailure = errors.New("key generation failed")

	// ErrProofGenerationFailure 证明生成失败
	ErrProofGenerationFailure = errors.New("proof generation failed")

	// ErrMalformedInput 输入格式错误（空证明、无法解码的字节、数量不符）
	ErrMalformedInput = errors.New("malformed input")

	// ErrUnknownWitness 见证含未知值（需要完整见证的操作拒绝执行）
	ErrUnknownWitness = errors.New("unknown witness value")

	// ErrUnsupportedPredicate 谓词未注册
	ErrUnsupportedPredicate = errors.New("unsupported predicate")

	// ErrUnsupportedScheme 证明方案或曲线不受支持
	ErrUnsupportedScheme = errors.New("unsupported proving scheme")

	// ErrCapacityExceeded 电路约束数超出2^k容量
	ErrCapacityExceeded = errors.New("circuit capacity exceeded")
)

// ============================================================================
//                               错误包装函数
// ============================================================================

// WrapNotInitializedError 包装未初始化错误
func WrapNotInitializedError(predicateName string) error {
	return fmt.Errorf("%w: predicate=%s", ErrSystemNotInitialized, predicateName)
}

// WrapAlreadyInitializedError 包装重复初始化错误
func WrapAlreadyInitializedError(predicateName string, existingK, requestedK int) error {
	return fmt.Errorf("%w: predicate=%s, existingK=%d, requestedK=%d",
		ErrAlreadyInitialized, predicateName, existingK, requestedK)
}

// WrapKeyGenerationError 包装可信设置失败错误
// 原因链保留（容量超限等内层哨兵在外层仍可用errors.Is检测）
func WrapKeyGenerationError(predicateName string, err error) error {
	return fmt.Errorf("%w: predicate=%s, cause=%w", ErrKeyGenerationFailure, predicateName, err)
}

// WrapProofGenerationError 包装证明生成失败错误
func WrapProofGenerationError(predicateName string, err error) error {
	return fmt.Errorf("%w: predicate=%s, cause=%w", ErrProofGenerationFailure, predicateName, err)
}

// WrapMalformedInputError 包装输入格式错误
func WrapMalformedInputError(reason string) error {
	return fmt.Errorf("%w: %s", ErrMalformedInput, reason)
}

// WrapUnknownWitnessError 包装未知见证错误（自身属于输入格式错误的子类）
func WrapUnknownWitnessError(name string) error {
	return fmt.Errorf("%w: %w: value=%s", ErrMalformedInput, ErrUnknownWitness, name)
}

// WrapUnsupportedPredicateError 包装未注册谓词错误
func WrapUnsupportedPredicateError(predicateName string) error {
	return fmt.Errorf("%w: predicate=%s", ErrUnsupportedPredicate, predicateName)
}

// WrapUnsupportedSchemeError 包装不支持的方案错误
func WrapUnsupportedSchemeError(schemeName string) error {
	return fmt.Errorf("%w: scheme=%s", ErrUnsupportedScheme, schemeName)
}

// WrapCapacityExceededError 包装容量超限错误
func WrapCapacityExceededError(predicateName string, constraints int, rowExponent int) error {
	return fmt.Errorf("%w: predicate=%s, constraints=%d, capacity=2^%d",
		ErrCapacityExceeded, predicateName, constraints, rowExponent)
}
