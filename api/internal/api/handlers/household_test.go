package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mis/api/internal/api/handlers"
	"mis/api/internal/core/domain"
)

type fakeHouseholdService struct {
	created *domain.NewHousehold
	views   []domain.HouseholdView
	err     error
}

func (f *fakeHouseholdService) CreateHousehold(_ context.Context, in domain.NewHousehold) (*domain.HouseholdView, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = &in
	return &domain.HouseholdView{ID: 1, HeadFirstName: in.HeadFirstName, Phone: in.Phone}, nil
}

func (f *fakeHouseholdService) GetHousehold(_ context.Context, id int) (*domain.HouseholdView, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, v := range f.views {
		if v.ID == id {
			return &v, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeHouseholdService) ListHouseholds(context.Context) ([]domain.HouseholdView, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.views, nil
}

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func serve(t *testing.T, svc domain.HouseholdService, method, path, body string) (int, envelope) {
	t.Helper()
	h := handlers.NewHouseholdHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Get("/households", h.List)
	r.Get("/households/{id}", h.GetByID)
	r.Post("/households", h.Create)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return rec.Code, env
}

const validBody = `{
	"program_id": 1,
	"sublocation_id": 7,
	"head_first_name": "Achieng",
	"head_last_name": "Otieno",
	"head_id_number": "12345678",
	"phone": "254712345678"
}`

// withField returns validBody with field set to the raw JSON value, or removed when value is empty.
func withField(t *testing.T, field, value string) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(validBody), &m))
	if value == "" {
		delete(m, field)
	} else {
		m[field] = json.RawMessage(value)
	}
	b, err := json.Marshal(m)
	require.NoError(t, err)
	return string(b)
}

func TestHouseholdHandler_Create(t *testing.T) {
	svc := &fakeHouseholdService{}

	status, env := serve(t, svc, http.MethodPost, "/households", validBody)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "success", env.Status)

	var view domain.HouseholdView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "254712345678", view.Phone)
	require.NotNil(t, svc.created)
	assert.Equal(t, 7, svc.created.SublocationID)
}

func TestHouseholdHandler_Create_Validation(t *testing.T) {
	replace := func(field, value string) string { return withField(t, field, value) }

	cases := []struct {
		name    string
		body    string
		message string
	}{
		{"broken json", `{"program_id":`, "Invalid JSON payload"},
		{"non numeric program", replace("program_id", `"two"`), "Invalid JSON payload"},
		{"boolean phone", replace("phone", "true"), "Invalid JSON payload"},
		{"null phone", replace("phone", "null"), "All fields are required"},
		{"short numeric phone", replace("phone", "712345678"), "Invalid phone number format. Use format: 254XXXXXXXXX"},
		{"missing phone", replace("phone", ""), "All fields are required"},
		{"blank first name", replace("head_first_name", `"   "`), "All fields are required"},
		{"zero program", replace("program_id", "0"), "All fields are required"},
		{"local phone format", replace("phone", `"0712345678"`), "Invalid phone number format. Use format: 254XXXXXXXXX"},
		{"phone too long", replace("phone", `"2547123456789"`), "Invalid phone number format. Use format: 254XXXXXXXXX"},
		{"short id number", replace("head_id_number", `"1234"`), "Invalid ID number length"},
		{"long id number", replace("head_id_number", `"123456789012345678901"`), "Invalid ID number length"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeHouseholdService{}
			status, env := serve(t, svc, http.MethodPost, "/households", tc.body)

			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "error", env.Status)
			assert.Equal(t, tc.message, env.Message)
			assert.Nil(t, svc.created, "service must not be called")
		})
	}
}

func TestHouseholdHandler_List(t *testing.T) {
	svc := &fakeHouseholdService{views: []domain.HouseholdView{
		{ID: 1, Phone: "254700000001"},
		{ID: 2, Phone: "254700000002"},
	}}

	status, env := serve(t, svc, http.MethodGet, "/households", "")
	require.Equal(t, http.StatusOK, status)

	var views []domain.HouseholdView
	require.NoError(t, json.Unmarshal(env.Data, &views))
	assert.Len(t, views, 2)
	assert.Equal(t, "254700000002", views[1].Phone)
}

func TestHouseholdHandler_GetByID(t *testing.T) {
	svc := &fakeHouseholdService{views: []domain.HouseholdView{{ID: 3, Phone: "254700000003"}}}

	status, _ := serve(t, svc, http.MethodGet, "/households/3", "")
	assert.Equal(t, http.StatusOK, status)

	status, env := serve(t, svc, http.MethodGet, "/households/4", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Household not found", env.Message)

	status, env = serve(t, svc, http.MethodGet, "/households/abc", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid household ID", env.Message)
}

func TestHouseholdHandler_UnrecoverableFieldIsGeneric(t *testing.T) {
	cryptoErr := fmt.Errorf("household 9: %w", domain.ErrUnrecoverableField)
	svc := &fakeHouseholdService{err: cryptoErr}

	for _, path := range []string{"/households", "/households/9"} {
		status, env := serve(t, svc, http.MethodGet, path, "")
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "Failed to process record", env.Message)
		assert.NotContains(t, env.Message, "household 9")
	}

	svc.err = domain.ErrProtectFailed
	status, env := serve(t, svc, http.MethodPost, "/households", validBody)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Failed to process record", env.Message)
}

func TestHouseholdHandler_Create_CoercesLooseScalars(t *testing.T) {
	cases := []struct {
		name  string
		field string
		value string
	}{
		{"numeric phone", "phone", "254712345678"},
		{"exponent phone", "phone", "2.54712345678e11"},
		{"string program id", "program_id", `"1"`},
		{"string sublocation id", "sublocation_id", `" 7 "`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := withField(t, tc.field, tc.value)
			svc := &fakeHouseholdService{}

			status, env := serve(t, svc, http.MethodPost, "/households", body)
			require.Equal(t, http.StatusCreated, status, env.Message)

			var view domain.HouseholdView
			require.NoError(t, json.Unmarshal(env.Data, &view))
			assert.Equal(t, "254712345678", view.Phone)

			require.NotNil(t, svc.created)
			assert.Equal(t, "254712345678", svc.created.Phone)
			assert.Equal(t, 1, svc.created.ProgramID)
			assert.Equal(t, 7, svc.created.SublocationID)
		})
	}
}

func TestHouseholdHandler_Create_InvalidReference(t *testing.T) {
	svc := &fakeHouseholdService{err: fmt.Errorf("failed to persist household: %w: households_program_id_fkey", domain.ErrInvalidReference)}

	status, env := serve(t, svc, http.MethodPost, "/households", validBody)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Failed to create household", env.Message)
	assert.NotContains(t, env.Message, "fkey")
}

func TestHouseholdHandler_UnexpectedErrors(t *testing.T) {
	svc := &fakeHouseholdService{err: errors.New("connection reset by peer")}

	cases := []struct {
		method, path, body, message string
	}{
		{http.MethodGet, "/households", "", "Failed to fetch households"},
		{http.MethodGet, "/households/9", "", "Failed to fetch household"},
		{http.MethodPost, "/households", validBody, "Failed to create household"},
	}

	for _, tc := range cases {
		status, env := serve(t, svc, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusInternalServerError, status, tc.path)
		assert.Equal(t, tc.message, env.Message)
	}
}
