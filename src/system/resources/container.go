// Package resources computes what a unit costs on a core and admits groups of
// units into the shared placement pool.
package resources

// BYTES_PER_WORD is the word size of the target core.
const BYTES_PER_WORD = 4

// Container is a resource estimate. VariableSDRAM is bytes per timestep and is
// only turned into a byte count once the number of timesteps is known.
type Container struct {
	ConstantSDRAM int64
	VariableSDRAM int64
	DTCM          int64
	CPUCycles     int64
}

// Add sums two estimates component-wise.
func (c Container) Add(o Container) Container {
	return Container{
		ConstantSDRAM: c.ConstantSDRAM + o.ConstantSDRAM,
		VariableSDRAM: c.VariableSDRAM + o.VariableSDRAM,
		DTCM:          c.DTCM + o.DTCM,
		CPUCycles:     c.CPUCycles + o.CPUCycles,
	}
}

// SDRAM is the total SDRAM needed to run for the given number of timesteps.
func (c Container) SDRAM(timesteps int64) int64 {
	return c.ConstantSDRAM + c.VariableSDRAM*timesteps
}
