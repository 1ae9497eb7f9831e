package middleware

// identity.go defines helpers shared across middleware files: user identity
// extraction for rate-limit keys and referral-code capture for checkout.

import (
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"
)

// ReferralCodeKey is the context key under which a captured referral code is
// stored for the confirm handler.
const ReferralCodeKey = "referral_code"

// ReferralCapture copies a referral code from the X-Referral-Code header or
// the referral_code cookie into the request context.  The code is attached
// out of band when a user follows a referral link; checkout passes it to the
// store so the referrer is credited in the same transaction that confirms
// the tags.  Absence of a code is not an error.
func ReferralCapture() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            code := strings.TrimSpace(c.Request().Header.Get("X-Referral-Code"))
            if code == "" {
                if ck, err := c.Cookie("referral_code"); err == nil {
                    code = strings.TrimSpace(ck.Value)
                }
            }
            if code != "" {
                c.Set(ReferralCodeKey, code)
            }
            return next(c)
        }
    }
}

// currentUserID returns a string form of the authenticated user for
// rate-limit key construction.  JWT numeric claims decode as float64.
// "anon" is returned when no user is present.
func currentUserID(c echo.Context) string {
    switch v := c.Get("user_id").(type) {
    case string:
        if v != "" {
            return v
        }
    case float64:
        if v > 0 {
            return strconv.FormatUint(uint64(v), 10)
        }
    case uint64:
        return strconv.FormatUint(v, 10)
    }
    return "anon"
}
