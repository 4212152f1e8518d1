package person

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/tanjomail/internal/csvimport"
	"github.com/hitoshi/tanjomail/internal/model"
)

type mockOrganizationRepo struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Organization, error)
}

func (m *mockOrganizationRepo) FindByID(ctx context.Context, id string) (*model.Organization, error) {
	return m.findByIDFunc(ctx, id)
}

type mockPersonRepo struct {
	findByIDFunc    func(ctx context.Context, orgID, id string) (*model.Person, error)
	countActiveFunc func(ctx context.Context, orgID string) (int, error)
	listFunc        func(ctx context.Context, orgID string) ([]*model.Person, error)
	upsertFunc      func(ctx context.Context, person *model.Person) (bool, error)
	setOptedOutFunc func(ctx context.Context, orgID, id string, optedOut bool) error
}

func (m *mockPersonRepo) FindByID(ctx context.Context, orgID, id string) (*model.Person, error) {
	return m.findByIDFunc(ctx, orgID, id)
}

func (m *mockPersonRepo) CountActiveByOrganization(ctx context.Context, orgID string) (int, error) {
	return m.countActiveFunc(ctx, orgID)
}

func (m *mockPersonRepo) ListByOrganization(ctx context.Context, orgID string) ([]*model.Person, error) {
	return m.listFunc(ctx, orgID)
}

func (m *mockPersonRepo) UpsertByEmail(ctx context.Context, person *model.Person) (bool, error) {
	return m.upsertFunc(ctx, person)
}

func (m *mockPersonRepo) SetOptedOut(ctx context.Context, orgID, id string, optedOut bool) error {
	return m.setOptedOutFunc(ctx, orgID, id, optedOut)
}

func existingOrgRepo() *mockOrganizationRepo {
	return &mockOrganizationRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Organization, error) {
			return &model.Organization{ID: id, Name: "テスト株式会社", Timezone: "Asia/Dhaka"}, nil
		},
	}
}

const importCSV = "name,email,birthday\n" +
	"Rahim Uddin,rahim@example.com,1990-05-14\n" +
	"Karima Begum,karima@example.com,15/06/1992\n" +
	",missing@example.com,1990-01-01\n"

func TestImportCSV_CountsCreatedAndUpdated(t *testing.T) {
	var upserted []*model.Person
	repo := &mockPersonRepo{
		upsertFunc: func(ctx context.Context, person *model.Person) (bool, error) {
			upserted = append(upserted, person)
			// 1件目は新規、2件目は既存の更新
			return len(upserted) == 1, nil
		},
	}
	svc := NewService(existingOrgRepo(), repo, csvimport.NewValidator())

	result, err := svc.ImportCSV(context.Background(), "org-1", []byte(importCSV))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if result.Created != 1 {
		t.Errorf("Created = %d, want 1", result.Created)
	}
	if result.Updated != 1 {
		t.Errorf("Updated = %d, want 1", result.Updated)
	}
	if result.Validation.Summary.ValidRows != 2 {
		t.Errorf("ValidRows = %d, want 2", result.Validation.Summary.ValidRows)
	}
	if result.Validation.Summary.ErrorRows != 1 {
		t.Errorf("ErrorRows = %d, want 1（氏名欠落行）", result.Validation.Summary.ErrorRows)
	}

	if len(upserted) != 2 {
		t.Fatalf("upserted %d people, want 2", len(upserted))
	}
	first := upserted[0]
	if first.OrganizationID != "org-1" {
		t.Errorf("OrganizationID = %q, want org-1", first.OrganizationID)
	}
	if first.ID == "" {
		t.Error("person ID should be generated")
	}
	if first.Email != "rahim@example.com" {
		t.Errorf("Email = %q, want rahim@example.com", first.Email)
	}
	if got := first.Birthday.Format("2006-01-02"); got != "1990-05-14" {
		t.Errorf("Birthday = %q, want 1990-05-14", got)
	}
}

func TestImportCSV_OrganizationNotFound(t *testing.T) {
	orgRepo := &mockOrganizationRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Organization, error) {
			return nil, nil
		},
	}
	svc := NewService(orgRepo, &mockPersonRepo{}, csvimport.NewValidator())

	_, err := svc.ImportCSV(context.Background(), "missing", []byte(importCSV))
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeOrganizationNotFound {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeOrganizationNotFound)
	}
}

func TestImportCSV_UpsertFailure_Aborts(t *testing.T) {
	repo := &mockPersonRepo{
		upsertFunc: func(ctx context.Context, person *model.Person) (bool, error) {
			return false, errors.New("db down")
		},
	}
	svc := NewService(existingOrgRepo(), repo, csvimport.NewValidator())

	_, err := svc.ImportCSV(context.Background(), "org-1", []byte(importCSV))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestValidateCSV_DoesNotTouchRepository(t *testing.T) {
	repo := &mockPersonRepo{
		upsertFunc: func(ctx context.Context, person *model.Person) (bool, error) {
			t.Fatal("UpsertByEmail should not be called during validation")
			return false, nil
		},
	}
	svc := NewService(existingOrgRepo(), repo, csvimport.NewValidator())

	result := svc.ValidateCSV([]byte(importCSV))
	if result.Summary.ValidRows != 2 {
		t.Errorf("ValidRows = %d, want 2", result.Summary.ValidRows)
	}
}

func TestList_ReturnsPeople(t *testing.T) {
	repo := &mockPersonRepo{
		listFunc: func(ctx context.Context, orgID string) ([]*model.Person, error) {
			return []*model.Person{
				{ID: "p-1", FullName: "Karima Begum"},
				{ID: "p-2", FullName: "Rahim Uddin"},
			}, nil
		},
	}
	svc := NewService(existingOrgRepo(), repo, csvimport.NewValidator())

	people, err := svc.List(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(people) != 2 {
		t.Errorf("len(people) = %d, want 2", len(people))
	}
}

func TestOptOut_DelegatesToRepository(t *testing.T) {
	var gotOrgID, gotPersonID string
	var gotOptedOut bool
	repo := &mockPersonRepo{
		setOptedOutFunc: func(ctx context.Context, orgID, id string, optedOut bool) error {
			gotOrgID, gotPersonID, gotOptedOut = orgID, id, optedOut
			return nil
		},
	}
	svc := NewService(existingOrgRepo(), repo, csvimport.NewValidator())

	if err := svc.OptOut(context.Background(), "org-1", "p-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotOrgID != "org-1" || gotPersonID != "p-1" || !gotOptedOut {
		t.Errorf("SetOptedOut called with (%q, %q, %v), want (org-1, p-1, true)", gotOrgID, gotPersonID, gotOptedOut)
	}
}

func TestOptOut_PersonNotFound(t *testing.T) {
	repo := &mockPersonRepo{
		setOptedOutFunc: func(ctx context.Context, orgID, id string, optedOut bool) error {
			return model.NewPersonNotFoundError(id)
		},
	}
	svc := NewService(existingOrgRepo(), repo, csvimport.NewValidator())

	err := svc.OptOut(context.Background(), "org-1", "missing")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodePersonNotFound {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodePersonNotFound)
	}
}
