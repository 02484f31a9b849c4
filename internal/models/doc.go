// Package models defines the persisted domain rows for MoneySplit.
//
// # Models
//
//   - User: registered account, identified by UUID and unique email
//   - Group: set of users sharing expenses, joinable by invite code
//   - Expense: one shared payment inside a group
//   - ExpenseSplit: one participant's share of an expense
//
// # Design Principles
//
//  1. **Rows, not views**: balances and settlements are never stored; they are
//     recomputed from expenses by the calculator package on every read.
//  2. **IDs over pointers**: relationships are expressed as ID strings.
//  3. **Unix timestamps**: CreatedAt/UpdatedAt are seconds since the epoch.
package models
