package domain

// DefaultIdentityKey is the well-known key of the identity record.
// It matches the key used by storefront web clients so existing carts survive.
const DefaultIdentityKey = "shopify_checkout_id"
