/*
Package domain contains the core data model of the cart synchronizer.

It defines the remote checkout resource as seen from the client, its line items,
the inputs used to mutate it, and the error taxonomy shared by the synchronizer
and its adapters. This package is kept pure and free of I/O, following
Hexagonal Architecture principles.

# Key Entities

  - Checkout: The remote cart resource (line items, total price, completion state).
  - LineItem: One variant+quantity entry within a checkout.
  - LineItemInput / LineItemUpdate: Payloads for add and update calls.
  - CheckoutStatus: Lifecycle of a checkout as observed by the client.
*/
package domain
