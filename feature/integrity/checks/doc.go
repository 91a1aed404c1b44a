// Package checks holds the individual integrity checks behind the integrity feature.
package checks
