// Package apply holds the entity appliers and the engine that runs them in dependency order.
package apply
