// Package voting implements the vote engine, the rating aggregator, and the
// consistency trigger that keeps question/answer ratings and user reputation
// in sync with the vote ledger.
//
// Every vote mutation runs its read-modify-write and the item rating
// recomputation inside one transaction; profile reputation is refreshed in a
// follow-up transaction immediately after commit.
package voting
