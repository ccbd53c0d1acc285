package desim

// Interrupt schedules an Interruption helper event, Urgent priority, at
// the current simulation time. When it fires, it removes p's resume
// callback from whatever Event p is currently waiting on and delivers an
// *Interrupt carrying cause into p's routine, which observes it as the
// error returned from its current Yield call. Interrupting a Process
// whose routine has already terminated is a no-op.
//
// Grounded on spec.md §4.4. Because the helper event runs at Urgent
// priority, an interrupt scheduled after the victim's current target at
// the same instant wins the race: the victim is resumed by the
// interrupt rather than by its original target, matching spec.md's
// coalescing rule.
func (p *Process) Interrupt(cause any) {
	env := p.env
	interruption := newEvent(env)
	interruption.triggered = true
	interruption.ok = true
	env.schedule(interruption, Urgent, 0)

	_, _ = interruption.AddCallback(func(*Event) {
		// A triggered Process has already terminated, even if its Event is
		// not yet processed.
		if !p.IsAlive() || p.Triggered() {
			return
		}
		if p.target != nil {
			p.target.RemoveCallback(p.targetHandle)
		}
		env.activeProcess = p
		p.resumeCh <- processResume{err: &Interrupt{Cause: cause}}
		p.awaitSuspension()
		env.activeProcess = nil
	})
}
