// Package workers calculates optimal worker pool sizes based on available
// CPU resources and task characteristics.
package workers
