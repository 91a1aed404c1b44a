// Package lock provides the singleton run guard for batch invocations.
//
// Two concurrent runs against one target would race on the row ledger and could
// leave two running batch rows. When enabled, a Redis lease (bsm/redislock) is
// taken before a batch begins and held, with periodic refresh, until the batch
// reaches a terminal state. A refresh that fails cancels the context handed out
// by Acquire with ErrLeaseLost, which aborts the apply transaction.
package lock
