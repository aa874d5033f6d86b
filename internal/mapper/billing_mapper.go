package mapper

import (
	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/model"
)

type BillingMapper struct{}

func NewBillingMapper() *BillingMapper {
	return &BillingMapper{}
}

func (m *BillingMapper) TopUpToEntity(o *model.TopUpOrder) *entity.TopUpOrder {
	if o == nil {
		return nil
	}
	return &entity.TopUpOrder{
		Id:            o.Id,
		AccountId:     o.AccountId,
		Credits:       o.Credits,
		GrossAmount:   o.GrossAmount,
		Status:        entity.TopUpStatus(o.Status),
		SnapToken:     o.SnapToken,
		TransactionId: o.TransactionId,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		SettledAt:     o.SettledAt,
	}
}

func (m *BillingMapper) TopUpToModel(o *entity.TopUpOrder) *model.TopUpOrder {
	if o == nil {
		return nil
	}
	return &model.TopUpOrder{
		Id:            o.Id,
		AccountId:     o.AccountId,
		Credits:       o.Credits,
		GrossAmount:   o.GrossAmount,
		Status:        string(o.Status),
		SnapToken:     o.SnapToken,
		TransactionId: o.TransactionId,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		SettledAt:     o.SettledAt,
	}
}

func (m *BillingMapper) UsageStatToEntity(u *model.UsageStat) *entity.UsageStat {
	if u == nil {
		return nil
	}
	return &entity.UsageStat{
		Id:               u.Id,
		AccountId:        u.AccountId,
		StatDate:         u.StatDate,
		GenerationsCount: u.GenerationsCount,
		TokensUsed:       u.TokensUsed,
		CacheHits:        u.CacheHits,
		CacheMisses:      u.CacheMisses,
		UpdatedAt:        u.UpdatedAt,
	}
}

func (m *BillingMapper) UsageStatsToEntities(stats []*model.UsageStat) []*entity.UsageStat {
	res := make([]*entity.UsageStat, len(stats))
	for i, u := range stats {
		res[i] = m.UsageStatToEntity(u)
	}
	return res
}
