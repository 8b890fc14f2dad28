package paymentprovider

// CheckoutParams describes one Checkout Session to create.
type CheckoutParams struct {
	// ClientReferenceID carries the user uid back in the completion webhook.
	ClientReferenceID string
	Plan              string
	Interval          string
	// UnitAmount is the price in the smallest currency unit (cents).
	UnitAmount int64
	Currency   string
	// ProductName is shown on the hosted checkout page.
	ProductName   string
	CustomerEmail string
}

// CheckoutSession is the subset of the created session the backend uses.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
