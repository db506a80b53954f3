package repository

import (
	"context"

	"freshmart/internal/domain/model"
)

type CartRepository interface {
	// 明細込みで取得。無ければErrNotFound。
	FindByUserID(ctx context.Context, userID string) (*model.Cart, error)
	// カートを作成または明細ごと置き換える
	Save(ctx context.Context, cart *model.Cart) error
	// 明細を空にする（カート自体は残す）
	Clear(ctx context.Context, userID string) error
}
