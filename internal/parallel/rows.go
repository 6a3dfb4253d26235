package parallel

// chunksPerWorker oversubscribes the pool so stealing can balance rows.
const chunksPerWorker = 4

// ForRows splits [0, n) into contiguous bands and calls fn(y0, y1) for each
// band on the pool, returning once every band is done. A nil pool or a
// single row runs fn inline.
func ForRows(p *WorkerPool, n int, fn func(y0, y1 int)) {
	if n <= 0 {
		return
	}
	if p == nil || n == 1 || p.Workers() == 1 {
		fn(0, n)
		return
	}

	chunks := min(n, p.Workers()*chunksPerWorker)
	step := (n + chunks - 1) / chunks
	work := make([]func(), 0, chunks)
	for y0 := 0; y0 < n; y0 += step {
		y1 := min(y0+step, n)
		work = append(work, func() { fn(y0, y1) })
	}
	p.ExecuteAll(work)
}
