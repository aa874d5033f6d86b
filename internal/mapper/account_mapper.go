package mapper

import (
	"time"

	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/model"

	"gorm.io/gorm"
)

type AccountMapper struct{}

func NewAccountMapper() *AccountMapper {
	return &AccountMapper{}
}

func (m *AccountMapper) ToEntity(a *model.Account) *entity.Account {
	if a == nil {
		return nil
	}
	var deletedAt *time.Time
	if a.DeletedAt.Valid {
		t := a.DeletedAt.Time
		deletedAt = &t
	}
	return &entity.Account{
		Id:        a.Id,
		Email:     a.Email,
		FullName:  a.FullName,
		Role:      entity.AccountRole(a.Role),
		Credits:   a.Credits,
		IsBanned:  a.IsBanned,
		BanReason: a.BanReason,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
		DeletedAt: deletedAt,
	}
}

func (m *AccountMapper) ToModel(a *entity.Account) *model.Account {
	if a == nil {
		return nil
	}
	res := &model.Account{
		Id:        a.Id,
		Email:     a.Email,
		FullName:  a.FullName,
		Role:      string(a.Role),
		Credits:   a.Credits,
		IsBanned:  a.IsBanned,
		BanReason: a.BanReason,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.DeletedAt != nil {
		res.DeletedAt = gorm.DeletedAt{Time: *a.DeletedAt, Valid: true}
	}
	return res
}

func (m *AccountMapper) ToEntities(accounts []*model.Account) []*entity.Account {
	res := make([]*entity.Account, len(accounts))
	for i, a := range accounts {
		res[i] = m.ToEntity(a)
	}
	return res
}
