// Package domain defines the risk scoring contract: a bounded [0,1] score with
// an ordered list of triggered rule reasons.
package domain

// PaymentProvider is one of the symbolic processors a charge is routed to.
type PaymentProvider string

const (
	ProviderStripe PaymentProvider = "stripe"
	ProviderPaypal PaymentProvider = "paypal"
)

// Reason labels, appended in rule evaluation order.
const (
	ReasonLargeAmount      = "large_amount"
	ReasonSuspiciousDomain = "suspicious_domain"
	ReasonHighVelocity     = "high_velocity"
	ReasonGeoMismatch      = "geo_mismatch"
	ReasonHighRiskCountry  = "high_risk_country"
)

// ChargeContext carries the fields the rule set inspects.
type ChargeContext struct {
	Amount         float64
	Email          string
	IPCountry      string
	BillingCountry string
}

// Assessment is the engine's verdict on one charge.
type Assessment struct {
	Score    float64
	Reasons  []string
	Blocked  bool
	Provider *PaymentProvider
}
