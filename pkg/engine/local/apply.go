package local

import (
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// mapRows builds a new table by applying fn to every cell. Rows are split
// into chunks processed concurrently, one goroutine per chunk up to the
// environment's parallelism. The first failing chunk aborts the whole call.
func mapRows(env *Env, tbl *Table, fn func(col, row int, v float64) (float64, error)) (*Table, error) {
	out := make([][]float64, len(tbl.data))
	for c := range out {
		out[c] = make([]float64, tbl.rows)
	}

	workers := env.parallelism
	if workers > tbl.rows {
		workers = tbl.rows
	}

	if workers < 1 {
		workers = 1
	}

	chunk := (tbl.rows + workers - 1) / workers

	grp := errgroup.Group{}

	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk

		if end > tbl.rows {
			end = tbl.rows
		}

		grp.Go(func() error {
			for row := start; row < end; row++ {
				for col := range tbl.data {
					v, err := fn(col, row, tbl.data[col][row])
					if err != nil {
						return err
					}

					out[col][row] = v
				}
			}

			return nil
		})
	}

	err := grp.Wait()
	if err != nil {
		return nil, err
	}

	return &Table{
		id:      uuid.New(),
		columns: append([]string(nil), tbl.columns...),
		data:    out,
		rows:    tbl.rows,
	}, nil
}
