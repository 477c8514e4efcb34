/*
Package transfer implements the double-entry money-transfer engine.

A transfer debits the sender by amount plus commission, credits the
receiver by amount, and appends an immutable transaction record, all
inside a single database transaction. Both account rows are locked
exclusively for the duration of the mutation, and locks are always
acquired in ascending account-id order so that mirror-image transfers
(A to B and B to A) cannot deadlock.

Usage:

	svc := transfer.NewService(ledger, cache, notifier, transfer.Config{}, nil)

	result, err := svc.Transfer(ctx, senderID, receiverID, amount)

Error Handling:

The service returns specific errors for different scenarios:
  - ErrInvalidAmount: amount is not positive or carries sub-cent precision
  - ErrSelfTransfer: sender and receiver are the same account
  - ErrUnknownSender / ErrUnknownReceiver: account does not exist
  - ErrInsufficientFunds: sender cannot cover amount plus commission
  - ErrConcurrencyConflict: lock or serialization conflict after retries;
    safe to retry, no state was committed
  - ErrStorageFailure: fatal storage error, not retried
*/
package transfer
