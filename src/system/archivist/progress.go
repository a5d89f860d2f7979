package archivist

import "strconv"

// Progress counts steps of a compile phase and reports them through the
// archivist. Steps are logged at DEBUG_LEVEL_TRACE, the summary at info.
type Progress struct {
	log   *Archivist
	name  string
	total int
	done  int
}

func (a *Archivist) NewProgress(name string, total int) *Progress {
	a.Debug(DEBUG_LEVEL_TRACE, name+" starting, steps="+strconv.Itoa(total))
	return &Progress{log: a, name: name, total: total}
}

func (p *Progress) Step() {
	p.done++
	p.log.DebugF(DEBUG_LEVEL_TRACE, "%s %d/%d", p.name, p.done, p.total)
}

func (p *Progress) Done() int {
	return p.done
}

func (p *Progress) End() {
	p.log.InfoF("%s finished %d/%d", p.name, p.done, p.total)
}
