package govledger

// Tick is a logical point in time. The host environment decides what
// one tick means (a block height, a minute, a counter); the core only
// compares and adds them. Lock periods are expressed in ticks.
type Tick int64

// Add returns the tick a period later.
func (t Tick) Add(period Tick) Tick {
	return t + period
}
