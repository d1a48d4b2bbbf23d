package parallel

// WorkgroupSize is the edge length of a 2D workgroup. It matches the
// @workgroup_size(8, 8) of the WGSL kernels.
const WorkgroupSize = 8

// Workgroups returns the number of workgroups needed to cover n
// invocations along one axis.
func Workgroups(n uint32) uint32 {
	return (n + WorkgroupSize - 1) / WorkgroupSize
}

// Dispatch2D invokes kernel for every (x, y) of a grid covering
// groupsX*groupsY workgroups of WorkgroupSize x WorkgroupSize invocations,
// then waits for all of them.
//
// The invocation grid is rounded up to whole workgroups, exactly as on a
// GPU, so kernels receive coordinates past the end of their data and must
// bounds-check against their own dispatch bound.
func (p *WorkerPool) Dispatch2D(groupsX, groupsY uint32, kernel func(x, y uint32)) {
	total := int(groupsX) * int(groupsY)
	if total == 0 {
		return
	}

	// Several workgroups per task keeps queue traffic low for large grids
	// while leaving enough tasks to balance across workers.
	tasks := min(total, p.Workers()*4)
	chunk := (total + tasks - 1) / tasks

	work := make([]func(), 0, tasks)
	for start := 0; start < total; start += chunk {
		end := min(start+chunk, total)
		work = append(work, func() {
			for g := start; g < end; g++ {
				gx := uint32(g%int(groupsX)) * WorkgroupSize
				gy := uint32(g/int(groupsX)) * WorkgroupSize
				for ly := range uint32(WorkgroupSize) {
					for lx := range uint32(WorkgroupSize) {
						kernel(gx+lx, gy+ly)
					}
				}
			}
		})
	}
	p.ExecuteAll(work)
}

// DispatchBound dispatches enough workgroups to cover a width x height
// invocation grid. Kernels still see the rounded-up grid.
func (p *WorkerPool) DispatchBound(width, height uint32, kernel func(x, y uint32)) {
	p.Dispatch2D(Workgroups(width), Workgroups(height), kernel)
}
