// Package txn is the only code permitted to touch the on-disk identity
// databases. It serializes all mutation system-wide behind an
// exclusive advisory lock and commits the four files together through
// atomic replace-on-write.
package txn
