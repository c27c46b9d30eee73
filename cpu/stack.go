package cpu

// Stack is the subroutine return address stack. Its depth is bounded only
// by available memory.
type Stack struct {
	Data []Address
}

func (s *Stack) Push(value Address) {
	s.Data = append(s.Data, value)
}

func (s *Stack) Pop() (value Address, ok bool) {
	value, ok = s.Peek()
	if ok {
		s.Data = s.Data[:len(s.Data)-1]
	}
	return
}

func (s *Stack) Empty() bool {
	return len(s.Data) == 0
}

func (s *Stack) Depth() int {
	return len(s.Data)
}

func (s *Stack) Peek() (value Address, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[len(s.Data)-1], true
}

func (s *Stack) Reset() {
	if len(s.Data) > 0 {
		s.Data = s.Data[:0]
	}
}
