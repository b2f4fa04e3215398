package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"vegeapp/internal/domain/model"
	repo "vegeapp/internal/repository"

	"github.com/google/uuid"
)

// 仕入（計量）伝票のusecase。
type MerchantUsecase struct {
	entryRepo repo.MerchantEntryRepository
}

func NewMerchantUsecase(entryRepo repo.MerchantEntryRepository) *MerchantUsecase {
	return &MerchantUsecase{entryRepo: entryRepo}
}

type MerchantBagInput struct {
	BagNo  int64   `json:"bag_number"`
	Weight float64 `json:"weight"`
}

type CreateMerchantEntryInput struct {
	Date         time.Time
	TripNo       string
	MerchantName string
	Vegetable    string
	UnitPrice    float64
	Bags         []MerchantBagInput
}

// 伝票作成。袋数・総重量・金額はクライアントの値を信用せず再計算する。
func (u *MerchantUsecase) CreateEntry(ctx context.Context, userID string, in CreateMerchantEntryInput) (model.MerchantEntry, error) {
	if userID == "" {
		return model.MerchantEntry{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.MerchantName) == "" {
		return model.MerchantEntry{}, NewHTTPError(http.StatusBadRequest, "merchant name required")
	}
	if strings.TrimSpace(in.TripNo) == "" {
		return model.MerchantEntry{}, NewHTTPError(http.StatusBadRequest, "trip no required")
	}
	if strings.TrimSpace(in.Vegetable) == "" {
		return model.MerchantEntry{}, NewHTTPError(http.StatusBadRequest, "vegetable required")
	}
	if in.UnitPrice <= 0 {
		return model.MerchantEntry{}, NewHTTPError(http.StatusBadRequest, "price must be > 0")
	}
	if len(in.Bags) == 0 {
		return model.MerchantEntry{}, NewHTTPError(http.StatusBadRequest, "at least one bag required")
	}

	entryID := uuid.NewString()
	bags := make([]model.MerchantBag, 0, len(in.Bags))
	var totalWeight float64 = 0

	for i, b := range in.Bags {
		if b.Weight < 0 {
			return model.MerchantEntry{}, NewHTTPError(http.StatusBadRequest, "bag weight must be >= 0")
		}
		bagNo := b.BagNo
		if bagNo == 0 {
			bagNo = int64(i + 1)
		}
		bags = append(bags, model.MerchantBag{
			ID:      uuid.NewString(),
			EntryID: entryID,
			BagNo:   bagNo,
			Weight:  b.Weight,
		})
		totalWeight += b.Weight
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}

	entry := model.MerchantEntry{
		ID:           entryID,
		UserID:       userID,
		Date:         date,
		TripNo:       strings.TrimSpace(in.TripNo),
		MerchantName: strings.TrimSpace(in.MerchantName),
		Vegetable:    strings.TrimSpace(in.Vegetable),
		UnitPrice:    in.UnitPrice,
		NoOfBags:     int64(len(bags)),
		TotalWeight:  totalWeight,
		Amount:       totalWeight * in.UnitPrice,
		Bags:         bags,
	}

	created, err := u.entryRepo.Create(ctx, entry)
	if err != nil {
		return model.MerchantEntry{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

// 自分の伝票一覧。dateを渡すとその日だけ
func (u *MerchantUsecase) ListEntries(ctx context.Context, userID string, date *time.Time) ([]model.MerchantEntry, error) {
	if userID == "" {
		return []model.MerchantEntry{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	entries, err := u.entryRepo.ListByUserID(ctx, userID, date)
	if err != nil {
		return []model.MerchantEntry{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return entries, nil
}

// 伝票詳細。他人の伝票は存在ごと隠して404
func (u *MerchantUsecase) GetEntry(ctx context.Context, userID string, entryID string) (model.MerchantEntry, error) {
	if userID == "" {
		return model.MerchantEntry{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if entryID == "" {
		return model.MerchantEntry{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	entry, err := u.entryRepo.FindByID(ctx, entryID)
	if err == repo.ErrNotFound {
		return model.MerchantEntry{}, NewHTTPError(http.StatusNotFound, "entry not found")
	}
	if err != nil {
		return model.MerchantEntry{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if entry.UserID != userID {
		return model.MerchantEntry{}, NewHTTPError(http.StatusNotFound, "entry not found")
	}
	return entry, nil
}
