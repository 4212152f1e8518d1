// Package scheduler は外部cronトリガーの受け付けと同日重複排除を提供する。
// 実際のメール送信はトリガーの下流システムが担い、本パッケージは
// (組織, 日付) ごとにちょうど1回だけ実行権を払い出すことに責任を持つ。
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/tanjomail/internal/model"
	"github.com/hitoshi/tanjomail/internal/repository"
)

// TriggerResult はトリガー受け付けの結果を表す。
type TriggerResult struct {
	// RunDate は組織のタイムゾーンにおける実行日（YYYY-MM-DD）。
	RunDate string `json:"runDate"`
	// Claimed は今回のトリガーが実行権を取得できたかどうか。
	// 同日2回目以降のトリガーはfalseを受け取る。
	Claimed bool `json:"claimed"`
}

// Service はトリガー受け付けのサービス層。
type Service struct {
	orgRepo repository.OrganizationRepository
	runRepo repository.SchedulerRunRepository

	now func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	orgRepo repository.OrganizationRepository,
	runRepo repository.SchedulerRunRepository,
) *Service {
	return &Service{
		orgRepo: orgRepo,
		runRepo: runRepo,
		now:     time.Now,
	}
}

// TriggerDaily は組織の当日分の実行権を取得する。
// 実行日は組織のタイムゾーンにおける現在日付で決まる。
// タイムゾーンが不正な場合はUTCにフォールバックする。
func (s *Service) TriggerDaily(ctx context.Context, orgID string) (*TriggerResult, error) {
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("組織の取得に失敗しました: %w", err)
	}
	if org == nil {
		return nil, model.NewOrganizationNotFoundError(orgID)
	}

	loc, err := time.LoadLocation(org.Timezone)
	if err != nil {
		loc = time.UTC
	}

	localNow := s.now().In(loc)
	runDate := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, time.UTC)

	claimed, err := s.runRepo.ClaimRun(ctx, orgID, runDate)
	if err != nil {
		return nil, fmt.Errorf("実行権の取得に失敗しました: %w", err)
	}

	return &TriggerResult{
		RunDate: runDate.Format("2006-01-02"),
		Claimed: claimed,
	}, nil
}
