// Package message encrypts and decrypts thread messages.
//
// It resolves thread keys through the threadkey service, runs the
// envelope cipher, and degrades to sentinel text when no key is
// resolvable or authentication fails. Raw crypto errors never cross
// this boundary on the read path.
package message
