// Package onboarding は組織のセットアップ進捗を表す5ステップの
// チェックリストを導出するドメインロジックを提供する。
package onboarding

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/tanjomail/internal/model"
	"github.com/hitoshi/tanjomail/internal/repository"
)

// ステップID（固定順）
const (
	StepAddPeople          = "add_people"
	StepChooseTemplate     = "choose_template"
	StepConfigureSettings  = "configure_settings"
	StepSendTestEmail      = "send_test_email"
	StepActivateAutomation = "activate_automation"

	// StepComplete は全ステップ完了時のCurrentStepIDに使う番兵値。
	// activeなステップが存在しない状態を明示的に表す。
	StepComplete = "complete"
)

// stepOrder はステップの固定順序。
var stepOrder = []string{
	StepAddPeople,
	StepChooseTemplate,
	StepConfigureSettings,
	StepSendTestEmail,
	StepActivateAutomation,
}

// StepStatus はステップの表示状態を表す。
type StepStatus string

const (
	// StatusLocked はまだ着手できない状態。
	StatusLocked StepStatus = "locked"
	// StatusActive は現在取り組むべき状態。
	StatusActive StepStatus = "active"
	// StatusDone は完了した状態。
	StatusDone StepStatus = "done"
)

// Step はチェックリストの1項目。呼び出しごとに再生成され、永続化されない。
type Step struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Route       string     `json:"route"`
	Status      StepStatus `json:"status"`
	NextStepID  string     `json:"nextStepId,omitempty"`
}

// stepMeta はステップの表示用メタデータ。
var stepMeta = map[string]struct {
	title       string
	description string
	route       string
}{
	StepAddPeople:          {"メンバーを追加", "CSVインポートまたは手入力で誕生日の名簿を登録します。", "/people/import"},
	StepChooseTemplate:     {"テンプレートを選択", "自動送信に使うメールテンプレートを設定します。", "/templates"},
	StepConfigureSettings:  {"送信設定を構成", "差出人アドレス・送信時刻・タイムゾーンを設定します。", "/settings"},
	StepSendTestEmail:      {"テストメールを送信", "設定内容でテストメールを送信して確認します。", "/settings/test-email"},
	StepActivateAutomation: {"自動送信を有効化", "誕生日メールの自動送信を開始します。", "/settings/automation"},
}

// State はオンボーディングの導出結果全体を表す。
// 両方のエントリポイントがこの完全な状態を返すため、呼び出し側の
// 追加フェッチは不要。
type State struct {
	Steps          []Step   `json:"steps"`
	CurrentStepID  string   `json:"currentStepId"`
	CompletedSteps []string `json:"completedSteps"`
	CompletedCount int      `json:"completedCount"`
	TotalSteps     int      `json:"totalSteps"`
	HasPeople      bool     `json:"hasPeople"`
	HasFirstSend   bool     `json:"hasFirstSend"`
}

// Service はオンボーディング状態の導出と永続化スナップショットの管理を行う。
//
// 完了判定は毎回ライブデータから計算され、保存されたスナップショットは
// 読み取り高速化のためのキャッシュに過ぎない。並行呼び出し間の
// read-then-write競合は許容する（後勝ちで問題ない）。
type Service struct {
	orgRepo      repository.OrganizationRepository
	personRepo   repository.PersonRepository
	assignRepo   repository.TemplateAssignmentRepository
	deliveryRepo repository.DeliveryLogRepository
	progressRepo repository.OnboardingProgressRepository

	// defaultFromAddress は組織に差出人アドレスが未設定の場合の
	// グローバルフォールバック。
	defaultFromAddress string

	now func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	orgRepo repository.OrganizationRepository,
	personRepo repository.PersonRepository,
	assignRepo repository.TemplateAssignmentRepository,
	deliveryRepo repository.DeliveryLogRepository,
	progressRepo repository.OnboardingProgressRepository,
	defaultFromAddress string,
) *Service {
	return &Service{
		orgRepo:            orgRepo,
		personRepo:         personRepo,
		assignRepo:         assignRepo,
		deliveryRepo:       deliveryRepo,
		progressRepo:       progressRepo,
		defaultFromAddress: defaultFromAddress,
		now:                time.Now,
	}
}

// ComputeState は組織の現在のデータ状態からチェックリストを導出して返す。
// 導出した完了ステップ一覧が保存済みスナップショットと異なる場合のみ
// スナップショットを上書きする。
func (s *Service) ComputeState(ctx context.Context, orgID string) (*State, error) {
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("組織の取得に失敗しました: %w", err)
	}
	if org == nil {
		return nil, model.NewOrganizationNotFoundError(orgID)
	}

	progress, err := s.ensureProgress(ctx, orgID)
	if err != nil {
		return nil, err
	}

	peopleCount, err := s.personRepo.CountActiveByOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("メンバー数の取得に失敗しました: %w", err)
	}

	assignment, err := s.assignRepo.FindDefaultActive(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("テンプレート紐付けの取得に失敗しました: %w", err)
	}

	deliveryCount, err := s.deliveryRepo.CountSucceededByOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("配信数の取得に失敗しました: %w", err)
	}

	done := map[string]bool{
		StepAddPeople:          peopleCount > 0,
		StepChooseTemplate:     assignment != nil,
		StepConfigureSettings:  s.settingsConfigured(org),
		StepSendTestEmail:      progress.TestEmailSentAt != nil,
		StepActivateAutomation: progress.AutomationActivatedAt != nil,
	}

	state := s.buildState(done)
	state.HasPeople = peopleCount > 0
	state.HasFirstSend = deliveryCount > 0

	// スナップショットはキャッシュ: 導出値と乖離した場合のみ書き戻す
	if !equalSteps(progress.CompletedSteps, state.CompletedSteps) {
		if err := s.progressRepo.UpdateCompletedSteps(ctx, orgID, state.CompletedSteps); err != nil {
			return nil, fmt.Errorf("進捗スナップショットの更新に失敗しました: %w", err)
		}
	}

	return state, nil
}

// MarkStep はステップの完了を記録し、再計算した最新状態を返す。
//
// 意味を持つのは send_test_email と activate_automation のみで、
// それぞれの一方向タイムスタンプを未設定の場合にだけ設定する（冪等）。
// それ以外のステップIDは黙って無視される: add_people等の完了は常に
// ライブデータから導出され、手動で完了にすることはできない。
func (s *Service) MarkStep(ctx context.Context, orgID, stepID string) (*State, error) {
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("組織の取得に失敗しました: %w", err)
	}
	if org == nil {
		return nil, model.NewOrganizationNotFoundError(orgID)
	}

	progress, err := s.ensureProgress(ctx, orgID)
	if err != nil {
		return nil, err
	}

	switch stepID {
	case StepSendTestEmail:
		if progress.TestEmailSentAt == nil {
			if err := s.progressRepo.SetTestEmailSentAt(ctx, orgID, s.now()); err != nil {
				return nil, fmt.Errorf("テストメール送信日時の記録に失敗しました: %w", err)
			}
		}
	case StepActivateAutomation:
		if progress.AutomationActivatedAt == nil {
			if err := s.progressRepo.SetAutomationActivatedAt(ctx, orgID, s.now()); err != nil {
				return nil, fmt.Errorf("自動送信有効化日時の記録に失敗しました: %w", err)
			}
		}
	}

	return s.ComputeState(ctx, orgID)
}

// ensureProgress は進捗行を取得し、存在しない場合は遅延作成する。
func (s *Service) ensureProgress(ctx context.Context, orgID string) (*model.OnboardingProgress, error) {
	progress, err := s.progressRepo.FindByOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("進捗の取得に失敗しました: %w", err)
	}
	if progress != nil {
		return progress, nil
	}

	progress = &model.OnboardingProgress{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		CompletedSteps: []string{},
	}
	if err := s.progressRepo.Create(ctx, progress); err != nil {
		return nil, fmt.Errorf("進捗の作成に失敗しました: %w", err)
	}
	return progress, nil
}

// settingsConfigured は送信設定ステップの完了判定を行う。
// 差出人アドレスが解決可能（組織固有またはグローバルフォールバック）で、
// 送信時・分がともに設定され、タイムゾーンが設定されていれば完了。
func (s *Service) settingsConfigured(org *model.Organization) bool {
	fromAddress := s.defaultFromAddress
	if org.EmailFromAddress != nil && *org.EmailFromAddress != "" {
		fromAddress = *org.EmailFromAddress
	}
	return fromAddress != "" &&
		org.BirthdaySendHour != nil &&
		org.BirthdaySendMinute != nil &&
		org.Timezone != ""
}

// buildState は完了フラグからステップ一覧を固定順で構築する。
// 順に歩いて最初の未完了ステップをactive、それ以降をlockedにする。
// 全ステップ完了の場合はactiveなステップは存在せず、CurrentStepIDは
// 番兵値 "complete" になる。
func (s *Service) buildState(done map[string]bool) *State {
	state := &State{
		Steps:          make([]Step, 0, len(stepOrder)),
		CompletedSteps: []string{},
		CurrentStepID:  StepComplete,
		TotalSteps:     len(stepOrder),
	}

	activeFound := false
	for i, id := range stepOrder {
		meta := stepMeta[id]
		step := Step{
			ID:          id,
			Title:       meta.title,
			Description: meta.description,
			Route:       meta.route,
		}
		if i+1 < len(stepOrder) {
			step.NextStepID = stepOrder[i+1]
		}

		switch {
		case done[id] && !activeFound:
			step.Status = StatusDone
			state.CompletedSteps = append(state.CompletedSteps, id)
		case !activeFound:
			step.Status = StatusActive
			state.CurrentStepID = id
			activeFound = true
		default:
			step.Status = StatusLocked
			if done[id] {
				// 後続に完了済みがあっても順序上はロック扱いだが、
				// スナップショットには完了として記録する
				state.CompletedSteps = append(state.CompletedSteps, id)
			}
		}

		state.Steps = append(state.Steps, step)
	}

	state.CompletedCount = len(state.CompletedSteps)
	return state
}

// equalSteps は完了ステップ一覧が順序込みで一致するかを返す。
func equalSteps(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
