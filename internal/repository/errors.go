package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// 在庫不足。reserveは状態を変えずにこれを返す
	ErrInsufficientStock = errors.New("insufficient stock")
)
