package xsink

import "context"

// TriggerRollover 同步执行一次跨天检查
func (s *Sink) TriggerRollover(ctx context.Context) error {
	reply := make(chan error, 1)
	err, callErr := request(ctx, s, tickMsg{reply: reply}, reply)
	if callErr != nil {
		return callErr
	}
	return err
}
