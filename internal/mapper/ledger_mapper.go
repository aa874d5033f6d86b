package mapper

import (
	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/model"
)

type LedgerMapper struct{}

func NewLedgerMapper() *LedgerMapper {
	return &LedgerMapper{}
}

func (m *LedgerMapper) ToEntity(t *model.CreditTransaction) *entity.CreditTransaction {
	if t == nil {
		return nil
	}
	return &entity.CreditTransaction{
		Id:           t.Id,
		AccountId:    t.AccountId,
		Amount:       t.Amount,
		Type:         entity.TransactionType(t.Type),
		GenerationId: t.GenerationId,
		ActorId:      t.ActorId,
		Description:  t.Description,
		CreatedAt:    t.CreatedAt,
	}
}

func (m *LedgerMapper) ToModel(t *entity.CreditTransaction) *model.CreditTransaction {
	if t == nil {
		return nil
	}
	return &model.CreditTransaction{
		Id:           t.Id,
		AccountId:    t.AccountId,
		Amount:       t.Amount,
		Type:         string(t.Type),
		GenerationId: t.GenerationId,
		ActorId:      t.ActorId,
		Description:  t.Description,
		CreatedAt:    t.CreatedAt,
	}
}

func (m *LedgerMapper) ToEntities(txs []*model.CreditTransaction) []*entity.CreditTransaction {
	res := make([]*entity.CreditTransaction, len(txs))
	for i, t := range txs {
		res[i] = m.ToEntity(t)
	}
	return res
}
