package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"freshmart/internal/domain/model"
	repo "freshmart/internal/repository"
)

// 管理者のステータス更新の入力。nilの項目は変えない。
type UpdateOrderStatusInput struct {
	Status        *string
	PaymentStatus *string
}

// ステータス更新。遷移表にない変更は拒否する。
func (u *OrderUsecase) UpdateStatus(ctx context.Context, actorID string, orderID string, in UpdateOrderStatusInput) (model.Order, error) {
	if in.Status == nil && in.PaymentStatus == nil {
		return model.Order{}, ValidationError("status or paymentStatus is required")
	}

	var (
		next    *model.OrderStatus
		payment *model.PaymentStatus
	)
	if in.Status != nil {
		s := model.OrderStatus(strings.TrimSpace(*in.Status))
		if !s.Valid() {
			return model.Order{}, ValidationError(fmt.Sprintf("Invalid status: %s", *in.Status))
		}
		next = &s
	}
	if in.PaymentStatus != nil {
		ps := model.PaymentStatus(strings.TrimSpace(*in.PaymentStatus))
		if !ps.Valid() {
			return model.Order{}, ValidationError(fmt.Sprintf("Invalid paymentStatus: %s", *in.PaymentStatus))
		}
		payment = &ps
	}

	// 更新と監査ログは同じTxで書く。通知はコミット後。
	var (
		updated model.Order
		changed bool
	)
	err := u.Tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("Order not found")
		}
		if err != nil {
			return err
		}
		before := *o

		// すでに同じなら何もしない
		next, payment := next, payment
		if next != nil && *next == o.Status {
			next = nil
		}
		if next != nil && !o.Status.CanTransitionTo(*next) {
			return InvalidState(fmt.Sprintf("Cannot change status from %s to %s", o.Status, *next))
		}
		if payment != nil && *payment == o.PaymentStatus {
			payment = nil
		}
		if next == nil && payment == nil {
			updated = *o
			return nil
		}

		// 読んだ時点のstatusのままのときだけ書く
		from := o.Status
		err = r.Orders().UpdateStatus(ctx, o.ID, repo.OrderStatusUpdate{From: &from, Status: next, PaymentStatus: payment})
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("Order not found")
		}
		if errors.Is(err, repo.ErrStaleState) {
			return InvalidState("Order status changed, please retry")
		}
		if err != nil {
			return err
		}
		if next != nil {
			o.Status = *next
		}
		if payment != nil {
			o.PaymentStatus = *payment
		}
		o.UpdatedAt = u.Clock.Now()

		// ★監査ログ（UPDATE_ORDER_STATUS）
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ID:           u.IDGen.NewID(),
			ActorUserID:  actorID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID,
			BeforeJSON:   statusJSON(before),
			AfterJSON:    statusJSON(*o),
			CreatedAt:    u.Clock.Now(),
		}); err != nil {
			return err
		}

		updated = *o
		changed = true
		return nil
	})
	if err != nil {
		return model.Order{}, passOrInternal("order.status", err)
	}

	if changed {
		if user, ok := u.owner(ctx, updated); ok {
			u.Notifier.OrderStatusChanged(user, updated)
		}
	}
	return updated, nil
}

func statusJSON(o model.Order) string {
	return fmt.Sprintf(`{"status":%q,"paymentStatus":%q}`, o.Status, o.PaymentStatus)
}
