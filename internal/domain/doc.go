// Package domain contains the core business entities and domain logic for
// student skill mastery tracking. It is independent of any specific
// infrastructure or delivery mechanism; the scheduling algorithm itself lives
// in the sm2 subpackage.
package domain
