package handler

import (
    "errors"
    "log"
    "net/http"
    "regexp"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/sendtags/checkout/internal/checkout"
    "github.com/sendtags/checkout/internal/middleware"
    "github.com/sendtags/checkout/internal/model"
    "github.com/sendtags/checkout/internal/queue"
    "github.com/sendtags/checkout/internal/repository"
    queue_publisher "github.com/sendtags/checkout/internal/service"
)

// tagNamePattern constrains claimable names: 1-20 word characters. Names are
// stored case-insensitively, so uniqueness is checked on the lowered form.
var tagNamePattern = regexp.MustCompile(`^\w{1,20}$`)

// TagHandler exposes tag registration, pricing and payment confirmation on
// behalf of authenticated users, plus the public availability check. JWT
// authentication has already run for all routes except availability.
type TagHandler struct {
    Tags     *repository.TagRepo
    Checkout *checkout.Service
}

// NewTagHandler constructs a TagHandler. Both dependencies must be non-nil.
func NewTagHandler(tags *repository.TagRepo, svc *checkout.Service) *TagHandler {
    if tags == nil || svc == nil {
        panic("nil dependency passed to NewTagHandler")
    }
    return &TagHandler{Tags: tags, Checkout: svc}
}

type tagResp struct {
    Name      string `json:"name"`
    Status    string `json:"status"`
    CreatedAt string `json:"created_at"`
}

func toTagResp(t model.Tag) tagResp {
    return tagResp{
        Name:      t.Name,
        Status:    string(t.Status),
        CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
    }
}

// Create handles POST /v1/tags. It claims a pending tag for the caller.
func (h *TagHandler) Create(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var body struct {
        Name string `json:"name"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    name := strings.ToLower(strings.TrimSpace(body.Name))
    if !tagNamePattern.MatchString(name) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name must be 1-20 letters, digits or underscores"})
    }

    tag, err := h.Tags.Create(c.Request().Context(), userID, name)
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrNameTaken):
            return c.JSON(http.StatusConflict, echo.Map{"error": "tag name already taken"})
        case errors.Is(err, repository.ErrTagLimit):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "pending tag limit reached"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusCreated, toTagResp(tag))
}

// List handles GET /v1/tags. It returns all of the caller's tags in
// creation order.
func (h *TagHandler) List(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    tags, err := h.Tags.ListByUser(c.Request().Context(), userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    out := make([]tagResp, 0, len(tags))
    for _, t := range tags {
        out = append(out, toTagResp(t))
    }
    return c.JSON(http.StatusOK, echo.Map{"tags": out})
}

// Quote handles GET /v1/tags/quote. It prices the caller's current pending
// set with the same pure pricing function confirmation uses, so the client
// can show the exact amount the payment must settle with.
func (h *TagHandler) Quote(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    pending, err := h.Tags.ListPending(c.Request().Context(), userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    names := make([]string, 0, len(pending))
    for _, t := range pending {
        names = append(names, t.Name)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "tag_names":  names,
        "amount_wei": checkout.BatchPriceWei(pending).String(),
    })
}

// Availability handles GET /v1/tags/:name/availability. It is public and
// sits behind the response cache; any existing claim makes a name
// unavailable.
func (h *TagHandler) Availability(c echo.Context) error {
    name := strings.ToLower(strings.TrimSpace(c.Param("name")))
    if !tagNamePattern.MatchString(name) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tag name"})
    }
    available, err := h.Tags.IsAvailable(c.Request().Context(), name)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"name": name, "available": available})
}

// Confirm handles POST /v1/tags/confirm. It verifies the submitted
// transaction settles the exact price of the caller's pending tags and
// confirms them atomically. The request blocks for up to the receipt retry
// budget while the indexer catches up; no partial state is ever committed
// on failure.
func (h *TagHandler) Confirm(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var body struct {
        Transaction string `json:"transaction"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    referralCode, _ := c.Get(middleware.ReferralCodeKey).(string)

    result, err := h.Checkout.ConfirmPayment(c.Request().Context(), userID, body.Transaction, referralCode)
    if err != nil {
        var ce *checkout.Error
        if errors.As(err, &ce) {
            return c.JSON(statusForKind(ce.Kind), echo.Map{
                "error":   string(ce.Kind),
                "message": ce.Message,
            })
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "confirm failed"})
    }

    // Best effort: a broker outage must not fail a committed confirmation.
    ev := queue.TagsConfirmedEvent{
        UserID:      userID,
        TagNames:    result.ConfirmedNames,
        AmountWei:   result.AmountWei,
        TxHash:      result.TxHash,
        EventID:     result.EventID,
        ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
    }
    if err := queue_publisher.PublishTagsConfirmed(c.Request().Context(), ev); err != nil {
        log.Printf("tag-confirm: publish event failed: %v", err)
    }

    return c.JSON(http.StatusOK, result)
}

// statusForKind maps every checkout failure kind to an HTTP status. The
// mapping is total: an unknown kind is a server bug and reads as 500.
func statusForKind(kind checkout.Kind) int {
    switch kind {
    case checkout.KindInvalidInput,
        checkout.KindNoPendingTags,
        checkout.KindNotAPayment,
        checkout.KindInvalidPayment,
        checkout.KindAmountMismatch:
        return http.StatusBadRequest
    case checkout.KindConflict:
        return http.StatusConflict
    case checkout.KindTransient:
        return http.StatusInternalServerError
    }
    return http.StatusInternalServerError
}
