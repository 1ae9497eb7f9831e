package checkout

import (
    "math/big"

    "github.com/sendtags/checkout/internal/model"
)

// basePriceWei is the price of a common (6+ character) tag: 0.002 ether.
var basePriceWei = new(big.Int).Mul(big.NewInt(2), exp10(15))

// TagPriceWei returns the price of a single tag name in wei. Shorter names
// are scarcer and cost more; the multiplier depends only on the name length,
// so the same batch always prices to the same total.
func TagPriceWei(name string) *big.Int {
    var multiplier int64
    switch n := len(name); {
    case n <= 2:
        multiplier = 16
    case n == 3:
        multiplier = 8
    case n == 4:
        multiplier = 4
    case n == 5:
        multiplier = 2
    default:
        multiplier = 1
    }
    return new(big.Int).Mul(basePriceWei, big.NewInt(multiplier))
}

// BatchPriceWei returns the exact amount a payment must settle with to
// confirm the given pending set: the sum of each tag's price.
func BatchPriceWei(tags []model.Tag) *big.Int {
    total := new(big.Int)
    for _, t := range tags {
        total.Add(total, TagPriceWei(t.Name))
    }
    return total
}

func exp10(n int64) *big.Int {
    return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}
