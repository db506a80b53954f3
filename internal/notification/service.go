package notification

import (
	"freshmart/internal/domain/model"
	"freshmart/internal/infra/mailer"
)

type dispatcher interface {
	Dispatch(msg mailer.Message)
}

// usecase.Notifierの実装
type Service struct {
	d dispatcher
}

func NewService(d dispatcher) *Service {
	return &Service{d: d}
}

func (s *Service) Welcome(user model.User) {
	s.d.Dispatch(welcomeMessage(user))
}

func (s *Service) OrderPlaced(user model.User, order model.Order) {
	s.d.Dispatch(orderPlacedMessage(user, order))
}

func (s *Service) OrderCancelled(user model.User, order model.Order) {
	s.d.Dispatch(orderCancelledMessage(user, order))
}

func (s *Service) OrderStatusChanged(user model.User, order model.Order) {
	s.d.Dispatch(orderStatusMessage(user, order))
}
