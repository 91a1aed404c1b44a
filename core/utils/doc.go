// Package utils provides small helpers shared by the engine, mostly lenient
// coercion of decoded JSON values into ints, strings and decimals.
package utils
