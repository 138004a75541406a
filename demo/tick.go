// This file contains DemoTick, the unit every packet and message sits on.

package demo

// Tick is a monotonically non-decreasing demo tick counter. Several packets
// typically share the same tick.
type Tick int32
