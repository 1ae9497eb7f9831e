package handler

import (
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/jackc/pgx/v5/pgconn"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/sendtags/checkout/internal/checkout"
    "github.com/sendtags/checkout/internal/repository"
)

func newTagHandler(t *testing.T) (*TagHandler, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })

    repo := repository.NewTagRepo(db)
    receipts := repository.NewReceiptRepo(db)
    lookup := checkout.NewLookup(receipts, checkout.RetryPolicy{MaxAttempts: 1})
    svc := checkout.NewService(repo, lookup, nil)
    return NewTagHandler(repo, svc), mock
}

func newContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
    t.Helper()
    e := echo.New()
    var req *http.Request
    if body == "" {
        req = httptest.NewRequest(method, target, nil)
    } else {
        req = httptest.NewRequest(method, target, strings.NewReader(body))
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.Set("user_id", uint64(1))
    return c, rec
}

func TestTagCreateRejectsBadNames(t *testing.T) {
    h, _ := newTagHandler(t)
    for _, name := range []string{"", "has space", "waytoolongtagname12345", "bad-dash", "emoji🦄"} {
        body, err := json.Marshal(map[string]string{"name": name})
        require.NoError(t, err)
        c, rec := newContext(t, http.MethodPost, "/v1/tags", string(body))
        require.NoError(t, h.Create(c))
        assert.Equal(t, http.StatusBadRequest, rec.Code, "name %q", name)
    }
}

func TestTagCreateNameTaken(t *testing.T) {
    h, mock := newTagHandler(t)
    mock.ExpectBegin()
    mock.ExpectQuery(`SELECT COUNT\(\*\) FROM`).
        WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
    mock.ExpectQuery(`INSERT INTO tags`).
        WillReturnError(&pgconn.PgError{Code: "23505"})
    mock.ExpectRollback()

    c, rec := newContext(t, http.MethodPost, "/v1/tags", `{"name":"alice"}`)
    require.NoError(t, h.Create(c))
    assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTagCreateLowercasesName(t *testing.T) {
    h, mock := newTagHandler(t)
    mock.ExpectBegin()
    mock.ExpectQuery(`SELECT COUNT\(\*\) FROM`).
        WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
    mock.ExpectQuery(`INSERT INTO tags`).
        WithArgs("alice", uint64(1)).
        WillReturnRows(sqlmock.NewRows([]string{"name", "user_id", "status", "created_at"}).
            AddRow("alice", uint64(1), "pending", time.Now()))
    mock.ExpectCommit()

    c, rec := newContext(t, http.MethodPost, "/v1/tags", `{"name":"ALICE"}`)
    require.NoError(t, h.Create(c))
    assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestTagAvailability(t *testing.T) {
    h, mock := newTagHandler(t)
    mock.ExpectQuery(`SELECT 1 FROM tags`).
        WithArgs("alice").
        WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

    c, rec := newContext(t, http.MethodGet, "/v1/tags/alice/availability", "")
    c.SetParamNames("name")
    c.SetParamValues("alice")
    require.NoError(t, h.Availability(c))
    assert.Equal(t, http.StatusOK, rec.Code)

    var resp map[string]interface{}
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    assert.Equal(t, true, resp["available"])
}

func TestTagConfirmNoPendingTags(t *testing.T) {
    h, mock := newTagHandler(t)
    mock.ExpectQuery(`SELECT name, user_id, status, created_at`).
        WillReturnRows(sqlmock.NewRows([]string{"name", "user_id", "status", "created_at"}))

    hash := "0xabcd00112233445566778899aabbccddeeff00112233445566778899aabbccdd"
    c, rec := newContext(t, http.MethodPost, "/v1/tags/confirm", `{"transaction":"`+hash+`"}`)
    require.NoError(t, h.Confirm(c))
    assert.Equal(t, http.StatusBadRequest, rec.Code)

    var resp map[string]string
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    assert.Equal(t, string(checkout.KindNoPendingTags), resp["error"])
}

func TestTagConfirmUnauthenticated(t *testing.T) {
    h, _ := newTagHandler(t)
    c, rec := newContext(t, http.MethodPost, "/v1/tags/confirm", `{"transaction":"0x0"}`)
    c.Set("user_id", nil)
    require.NoError(t, h.Confirm(c))
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStatusForKindIsTotal(t *testing.T) {
    cases := map[checkout.Kind]int{
        checkout.KindInvalidInput:   http.StatusBadRequest,
        checkout.KindNoPendingTags:  http.StatusBadRequest,
        checkout.KindNotAPayment:    http.StatusBadRequest,
        checkout.KindInvalidPayment: http.StatusBadRequest,
        checkout.KindAmountMismatch: http.StatusBadRequest,
        checkout.KindConflict:       http.StatusConflict,
        checkout.KindTransient:      http.StatusInternalServerError,
    }
    for kind, want := range cases {
        assert.Equal(t, want, statusForKind(kind), "kind %s", kind)
    }
    assert.Equal(t, http.StatusInternalServerError, statusForKind(checkout.Kind("unheard_of")))
}
