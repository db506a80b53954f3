package repository

import "errors"

var (
	// 対象が無い（または他人の物で見せない）
	ErrNotFound = errors.New("not found")

	// 一意制約違反
	ErrConflict = errors.New("conflict")

	// 条件付き更新で、読んだ時点から状態が変わっていた
	ErrStaleState = errors.New("stale state")
)
