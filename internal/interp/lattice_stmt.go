package interp

import (
	"strconv"
	"strings"

	"ramalg/internal/domain"
	"ramalg/internal/ram"
)

// groupByPrefix buckets rows by every attribute except the last
// (lattice-valued) one, preserving first-seen order.
func groupByPrefix(rows [][]domain.RamDomain) ([][]domain.RamDomain, [][]domain.RamDomain) {
	type key = string
	order := make([]key, 0, len(rows))
	prefixes := make(map[key][]domain.RamDomain)
	groups := make(map[key][][]domain.RamDomain)
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		prefix := row[:len(row)-1]
		k := rowKeyOf(prefix)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
			prefixes[k] = prefix
		}
		groups[k] = append(groups[k], row)
	}
	outPrefixes := make([][]domain.RamDomain, len(order))
	outGroups := make([][]domain.RamDomain, len(order))
	for i, k := range order {
		outPrefixes[i] = prefixes[k]
		outGroups[i] = lastColumns(groups[k])
	}
	return outPrefixes, outGroups
}

func lastColumns(rows [][]domain.RamDomain) []domain.RamDomain {
	out := make([]domain.RamDomain, len(rows))
	for i, row := range rows {
		out[i] = row[len(row)-1]
	}
	return out
}

func rowKeyOf(row []domain.RamDomain) string {
	var b strings.Builder
	for i, v := range row {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(int64(v), 10))
	}
	return b.String()
}

// foldLUB folds vals left-to-right through the program's LUB function,
// short-circuiting as soon as the running value reaches Top (spec.md
// §4.9: once a group's folded value is Top, further LUBs with it are
// always Top, grounded on Interpreter::visitLatNorm's early break).
func foldLUB(ctx *Context, seed domain.RamDomain, hasSeed bool, vals []domain.RamDomain) domain.RamDomain {
	var acc domain.RamDomain
	i := 0
	if hasSeed {
		acc = seed
	} else if len(vals) > 0 {
		acc = vals[0]
		i = 1
	}
	top := domain.RamDomain(ctx.Lattice.Top)
	for ; i < len(vals); i++ {
		if acc == top {
			break
		}
		acc = evalBinaryCase(ctx, ctx.Lattice.LUB, acc, vals[i])
	}
	return acc
}

func evalLatNorm(ctx *Context, n *ram.LatNorm) {
	in := ctx.Relation(n.In)
	out := ctx.EnsureRelation(n.Out)
	if in == nil || out == nil {
		return
	}
	prefixes, groups := groupByPrefix(in.TotalIndex().Rows())
	for i, prefix := range prefixes {
		folded := foldLUB(ctx, 0, false, groups[i])
		tuple := append(append([]domain.RamDomain{}, prefix...), folded)
		out.Insert(tuple)
	}
}

func evalLatClean(ctx *Context, n *ram.LatClean) {
	origin := ctx.Relation(n.Origin)
	newRel := ctx.Relation(n.New)
	outNew := ctx.EnsureRelation(n.OutNew)
	if origin == nil || newRel == nil || outNew == nil {
		return
	}

	originByPrefix := make(map[string]domain.RamDomain)
	for _, row := range origin.Snapshot() {
		if len(row) == 0 {
			continue
		}
		originByPrefix[rowKeyOf(row[:len(row)-1])] = row[len(row)-1]
	}

	prefixes, groups := groupByPrefix(newRel.TotalIndex().Rows())
	for i, prefix := range prefixes {
		key := rowKeyOf(prefix)
		originVal, hasOrigin := originByPrefix[key]
		var lub domain.RamDomain
		if hasOrigin {
			lub = foldLUB(ctx, originVal, true, groups[i])
		} else {
			lub = foldLUB(ctx, 0, false, groups[i])
		}
		if lub == domain.RamDomain(ctx.Lattice.Bottom) {
			continue
		}
		candidate := append(append([]domain.RamDomain{}, prefix...), lub)
		if !origin.Exists(candidate) {
			outNew.Insert(candidate)
		}
	}
}
