// Package person は名簿管理のドメインロジックを提供する。
// CSVインポートの検証結果を受け取り、有効行を名簿へ冪等に取り込む。
package person

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hitoshi/tanjomail/internal/csvimport"
	"github.com/hitoshi/tanjomail/internal/model"
	"github.com/hitoshi/tanjomail/internal/repository"
)

// ImportResult はCSV取り込みの結果を表す。
// 検証結果に加えて、実際に作成・更新された件数を含む。
type ImportResult struct {
	Validation *csvimport.ValidationResult `json:"validation"`
	Created    int                         `json:"created"`
	Updated    int                         `json:"updated"`
}

// Service は名簿管理のサービス層。
type Service struct {
	orgRepo    repository.OrganizationRepository
	personRepo repository.PersonRepository
	validator  *csvimport.Validator
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	orgRepo repository.OrganizationRepository,
	personRepo repository.PersonRepository,
	validator *csvimport.Validator,
) *Service {
	return &Service{
		orgRepo:    orgRepo,
		personRepo: personRepo,
		validator:  validator,
	}
}

// ValidateCSV はCSVバイト列を検証のみ行い、結果を返す（取り込みはしない）。
func (s *Service) ValidateCSV(data []byte) *csvimport.ValidationResult {
	return s.validator.ValidateBytes(data)
}

// ImportCSV はCSVを検証し、有効行を(organization_id, email)キーで
// 名簿へUPSERTする。行単位のエラーは結果に含めて返し、取り込み全体は
// 中断しない。
func (s *Service) ImportCSV(ctx context.Context, orgID string, data []byte) (*ImportResult, error) {
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("組織の取得に失敗しました: %w", err)
	}
	if org == nil {
		return nil, model.NewOrganizationNotFoundError(orgID)
	}

	validation := s.validator.ValidateBytes(data)
	result := &ImportResult{Validation: validation}

	for _, parsed := range validation.Valid {
		p := &model.Person{
			ID:             uuid.NewString(),
			OrganizationID: orgID,
			FullName:       parsed.FullName,
			FirstName:      parsed.FirstName,
			Email:          parsed.Email,
			Phone:          parsed.Phone,
			Birthday:       parsed.Birthday,
			Department:     parsed.Department,
			Role:           parsed.Role,
		}
		created, err := s.personRepo.UpsertByEmail(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("メンバーの取り込みに失敗しました（%s）: %w", parsed.Email, err)
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	return result, nil
}

// List は組織の名簿一覧を返す。
func (s *Service) List(ctx context.Context, orgID string) ([]*model.Person, error) {
	people, err := s.personRepo.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("名簿一覧の取得に失敗しました: %w", err)
	}
	return people, nil
}

// OptOut はメンバーを送信対象から除外する。
func (s *Service) OptOut(ctx context.Context, orgID, personID string) error {
	if err := s.personRepo.SetOptedOut(ctx, orgID, personID, true); err != nil {
		return err
	}
	return nil
}
