/*
Package ports defines the driven ports (interfaces) of the cart synchronizer.

These interfaces decouple the synchronization core from external implementations,
allowing it to work with any storefront backend, persistence medium, or
navigation mechanism.

# Key Interfaces

  - CheckoutClient: The remote checkout backend (create/fetch/add/update/remove).
  - KeyValueStore: The durable medium backing the identity record.
  - Navigator: Hands the checkout web URL off for payment.
  - CartService: The handle adapters (HTTP, MCP, shell) drive.
*/
package ports
