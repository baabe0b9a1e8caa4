// Package bisq wraps the Bisq markets API.
//
// # Offer book
//
// URL: /api/offers?market=btc_<FIAT>&direction=<BUY|SELL>
//
// The response is keyed by market ("btc_eur"), each market carrying a
// "buys" and a "sells" list. Amounts are BTC-denominated:
//
//	min_amount  minimum BTC the maker accepts
//	amount      maximum BTC on offer
//	volume      fiat value of the full offer
//
// Normalization derives the fiat bounds as:
//
//	min_amount(fiat) = min_amount(BTC) * price
//	max_amount(fiat) = volume
//
// Prices are truncated to integers, entries with a malformed or
// non-positive price are dropped, and output is sorted ascending
// by price.
//
// # Ticker
//
// URL: /api/ticker?market=btc_<FIAT>
//
// The "last" field backs the reference price used for deviation
// computation across all venues. The ticker is the only reference
// price source; resolution failures degrade to the fallback divisor
// handled in the pricefeed package.
//
// Both endpoints live on an onion service, so the injected HTTP
// client is expected to be Tor-proxied when the default base URL
// is in play.
package bisq
