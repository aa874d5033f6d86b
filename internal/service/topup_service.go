package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ai-contentgen-be/internal/dto"
	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/pkg/logger"
	"ai-contentgen-be/internal/pkg/mailer"
	"ai-contentgen-be/internal/repository/specification"
	"ai-contentgen-be/internal/repository/unitofwork"
	adminEvents "ai-contentgen-be/pkg/admin/events"
	"ai-contentgen-be/pkg/payment"

	"github.com/google/uuid"
)

var errAlreadySettled = errors.New("top-up already settled")

type ITopUpService interface {
	CreateOrder(ctx context.Context, accountId uuid.UUID, req *dto.CreateTopUpRequest) (*dto.TopUpResponse, error)
	ListOrders(ctx context.Context, accountId uuid.UUID) ([]*dto.TopUpResponse, error)
	HandleNotification(ctx context.Context, req *dto.MidtransNotificationRequest) error
}

type TopUpOptions struct {
	ServerKey      string
	PricePerCredit int64
	MinCredits     int
	FinishURL      string
}

type topUpService struct {
	uowFactory unitofwork.RepositoryFactory
	ledger     ILedgerService
	gateway    payment.Gateway
	email      mailer.IEmailService
	publisher  adminEvents.Publisher
	logger     logger.ILogger
	incidents  logger.ILogger
	opts       TopUpOptions
}

func NewTopUpService(
	uowFactory unitofwork.RepositoryFactory,
	ledger ILedgerService,
	gateway payment.Gateway,
	email mailer.IEmailService,
	publisher adminEvents.Publisher,
	logger logger.ILogger,
	incidents logger.ILogger,
	opts TopUpOptions,
) ITopUpService {
	return &topUpService{
		uowFactory: uowFactory,
		ledger:     ledger,
		gateway:    gateway,
		email:      email,
		publisher:  publisher,
		logger:     logger,
		incidents:  incidents,
		opts:       opts,
	}
}

func (s *topUpService) CreateOrder(ctx context.Context, accountId uuid.UUID, req *dto.CreateTopUpRequest) (*dto.TopUpResponse, error) {
	if req.Credits <= 0 || req.Credits < s.opts.MinCredits {
		return nil, fmt.Errorf("%w: minimum top-up is %d credits", ErrInvalidAmount, s.opts.MinCredits)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	account, err := uow.AccountRepository().FindOne(ctx, specification.ByID{ID: accountId})
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	order := &entity.TopUpOrder{
		Id:          uuid.New(),
		AccountId:   accountId,
		Credits:     req.Credits,
		GrossAmount: int64(req.Credits) * s.opts.PricePerCredit,
		Status:      entity.TopUpStatusPending,
	}
	if err := uow.BillingRepository().CreateTopUp(ctx, order); err != nil {
		return nil, err
	}

	// External call stays outside any DB transaction
	session, err := s.gateway.CreateCheckout(payment.CheckoutRequest{
		OrderId:     order.Id.String(),
		GrossAmount: order.GrossAmount,
		ItemName:    fmt.Sprintf("%d credits", order.Credits),
		Quantity:    int32(order.Credits),
		UnitPrice:   s.opts.PricePerCredit,
		Email:       account.Email,
		FullName:    account.FullName,
		FinishURL:   s.opts.FinishURL,
	})
	if err != nil {
		s.logger.Error(logger.ModuleTopUp, "Failed to create checkout", map[string]interface{}{
			"order_id": order.Id.String(),
			"error":    err.Error(),
		})
		return nil, err
	}
	if err := uow.BillingRepository().UpdateSnapToken(ctx, order.Id, session.Token); err != nil {
		return nil, err
	}
	order.SnapToken = session.Token

	resp := topUpToResponse(order)
	resp.RedirectUrl = session.RedirectURL
	return resp, nil
}

func (s *topUpService) ListOrders(ctx context.Context, accountId uuid.UUID) ([]*dto.TopUpResponse, error) {
	orders, err := s.uowFactory.NewUnitOfWork(ctx).BillingRepository().FindAllTopUps(ctx,
		specification.OwnedByAccount{AccountID: accountId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: 50, Offset: 0},
	)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.TopUpResponse, 0, len(orders))
	for _, o := range orders {
		res = append(res, topUpToResponse(o))
	}
	return res, nil
}

// HandleNotification settles an order at most once. The order flip and the
// purchase credit share one transaction, so a replayed notification finds the
// order already paid and changes nothing.
func (s *topUpService) HandleNotification(ctx context.Context, req *dto.MidtransNotificationRequest) error {
	if !payment.VerifySignature(req.OrderId, req.StatusCode, req.GrossAmount, s.opts.ServerKey, req.SignatureKey) {
		s.logger.Warn(logger.ModuleTopUp, "Notification signature mismatch", map[string]interface{}{
			"order_id": req.OrderId,
		})
		return ErrInvalidSignature
	}

	orderId, err := uuid.Parse(req.OrderId)
	if err != nil {
		return ErrOrderNotFound
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	order, err := uow.BillingRepository().FindTopUp(ctx, specification.ByID{ID: orderId})
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}

	switch req.TransactionStatus {
	case "capture", "settlement":
		if req.TransactionStatus == "capture" && req.FraudStatus != "" && req.FraudStatus != "accept" {
			s.logger.Warn(logger.ModuleTopUp, "Capture not accepted by fraud check", map[string]interface{}{
				"order_id":     req.OrderId,
				"fraud_status": req.FraudStatus,
			})
			return nil
		}
		if !grossMatches(req.GrossAmount, order.GrossAmount) {
			s.logger.Error(logger.ModuleTopUp, "Notification amount does not match order", map[string]interface{}{
				"order_id": req.OrderId,
				"expected": order.GrossAmount,
				"received": req.GrossAmount,
			})
			return ErrInvalidSignature
		}
		return s.settlePaid(ctx, order)
	case "deny", "cancel", "expire", "failure":
		ok, err := uow.BillingRepository().SettleTopUp(ctx, order.Id, entity.TopUpStatusFailed, nil, time.Now().UTC())
		if err != nil {
			return err
		}
		if ok {
			s.logger.Info(logger.ModuleTopUp, "Top-up failed", map[string]interface{}{
				"order_id": req.OrderId,
				"status":   req.TransactionStatus,
			})
		}
		return nil
	default:
		// pending and unknown statuses need no action
		return nil
	}
}

func (s *topUpService) settlePaid(ctx context.Context, order *entity.TopUpOrder) error {
	result, err := s.ledger.CreditWith(ctx, LedgerRequest{
		AccountId:   order.AccountId,
		Amount:      order.Credits,
		Type:        entity.TransactionTypePurchase,
		Description: fmt.Sprintf("Top-up %s", order.Id),
	}, func(uow unitofwork.UnitOfWork, tx *entity.CreditTransaction) error {
		ok, err := uow.BillingRepository().SettleTopUp(ctx, order.Id, entity.TopUpStatusPaid, &tx.Id, time.Now().UTC())
		if err != nil {
			return err
		}
		if !ok {
			return errAlreadySettled
		}
		return nil
	})
	if errors.Is(err, errAlreadySettled) {
		s.reportLateSettlement(ctx, order)
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.Info(logger.ModuleTopUp, "Top-up settled", map[string]interface{}{
		"order_id":      order.Id.String(),
		"account_id":    order.AccountId.String(),
		"credits":       order.Credits,
		"balance_after": result.BalanceAfter,
	})
	s.publisher.PublishTopUpSettled(ctx, order.Id, order.AccountId, order.Credits, order.GrossAmount)

	account, err := s.uowFactory.NewUnitOfWork(ctx).AccountRepository().FindOne(ctx, specification.ByID{ID: order.AccountId})
	if err == nil && account != nil {
		if err := s.email.SendTopUpReceipt(account.Email, order.Credits, order.GrossAmount, order.Id.String()); err != nil {
			s.logger.Warn(logger.ModuleTopUp, "Failed to send receipt", map[string]interface{}{
				"order_id": order.Id.String(),
				"error":    err.Error(),
			})
		}
	}
	return nil
}

// grossMatches accepts Midtrans amounts like "10000.00".
func grossMatches(received string, expected int64) bool {
	v, err := strconv.ParseFloat(received, 64)
	if err != nil {
		return false
	}
	return int64(v) == expected && v == float64(int64(v))
}

func topUpToResponse(o *entity.TopUpOrder) *dto.TopUpResponse {
	return &dto.TopUpResponse{
		OrderId:     o.Id,
		Credits:     o.Credits,
		GrossAmount: o.GrossAmount,
		Status:      string(o.Status),
		SnapToken:   o.SnapToken,
		CreatedAt:   o.CreatedAt,
		SettledAt:   o.SettledAt,
	}
}

// reportLateSettlement logs a settlement for an order that is already closed.
// A paid order is a plain duplicate. A failed order means the payment went
// through after it was denied or expired, so the money is held without credits
// and the case goes to the incident log.
func (s *topUpService) reportLateSettlement(ctx context.Context, order *entity.TopUpOrder) {
	current, err := s.uowFactory.NewUnitOfWork(ctx).BillingRepository().FindTopUp(ctx, specification.ByID{ID: order.Id})
	if err == nil && current != nil && current.Status == entity.TopUpStatusFailed {
		s.incidents.Error(logger.ModuleTopUp, "Settlement received for failed top-up", map[string]interface{}{
			"order_id":     order.Id.String(),
			"account_id":   order.AccountId.String(),
			"credits":      order.Credits,
			"gross_amount": order.GrossAmount,
		})
		return
	}
	s.logger.Info(logger.ModuleTopUp, "Duplicate settlement ignored", map[string]interface{}{
		"order_id": order.Id.String(),
	})
}
