// Package identdb models the colon-delimited identity databases of a
// Linux host:
//
//	passwd   user accounts
//	shadow   password hashes and aging
//	group    groups and memberships
//	gshadow  group administrators and hashes
//
// The package is pure: parsing, mutation and validation never touch the
// filesystem. Loading and committing the on-disk files is the job of
// the txn package.
package identdb
