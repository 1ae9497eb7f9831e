package checkout

import (
    "math/big"
    "testing"

    "github.com/stretchr/testify/assert"

    "github.com/sendtags/checkout/internal/model"
)

func TestTagPriceWei(t *testing.T) {
    cases := []struct {
        name string
        want string
    }{
        {"x", "32000000000000000"},      // 1 char: 16x base
        {"xy", "32000000000000000"},     // 2 chars: 16x base
        {"abc", "16000000000000000"},    // 3 chars: 8x base
        {"abcd", "8000000000000000"},    // 4 chars: 4x base
        {"abcde", "4000000000000000"},   // 5 chars: 2x base
        {"abcdef", "2000000000000000"},  // 6 chars: base
        {"longertagname", "2000000000000000"},
    }
    for _, tc := range cases {
        assert.Equal(t, tc.want, TagPriceWei(tc.name).String(), "name %q", tc.name)
    }
}

func TestBatchPriceWeiSums(t *testing.T) {
    tags := []model.Tag{{Name: "ab"}, {Name: "alice"}, {Name: "longer"}}
    want := new(big.Int)
    want.Add(want, TagPriceWei("ab"))
    want.Add(want, TagPriceWei("alice"))
    want.Add(want, TagPriceWei("longer"))
    got := BatchPriceWei(tags)
    assert.Zero(t, got.Cmp(want))
}

func TestBatchPriceWeiEmpty(t *testing.T) {
    assert.Equal(t, "0", BatchPriceWei(nil).String())
}

func TestBatchPriceWeiDeterministic(t *testing.T) {
    tags := []model.Tag{{Name: "bob"}, {Name: "carol"}}
    first := BatchPriceWei(tags)
    second := BatchPriceWei(tags)
    assert.Zero(t, first.Cmp(second))
}
