package bencode

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNoData        = errors.New("bencode: no data")
	ErrElementEnd    = errors.New("bencode: element not ended with 'e'")
	ErrColonMissing  = errors.New("bencode: missing ':' in string element")
	ErrStringLength  = errors.New("bencode: string length invalid")
	ErrTrailingData  = errors.New("bencode: trailing data after root element")
	ErrDigitExpected = errors.New("bencode: digit expected")
	ErrNumberRange   = errors.New("bencode: number out of range")
)

// Decode parses data as a single bencode element.
func Decode(data []byte) (Value, error) {
	sc := newScanner(data)
	v, err := sc.next()
	if err != nil {
		return nil, err
	}
	if !sc.finished() {
		return nil, ErrTrailingData
	}
	return v, nil
}

type scanner struct {
	current int
	data    []byte
}

func newScanner(data []byte) *scanner {
	return &scanner{data: data}
}

func (s *scanner) next() (Value, error) {
	if s.finished() {
		return nil, ErrNoData
	}
	switch s.peek() {
	case 'l':
		return s.readList()
	case 'd':
		return s.readDict()
	case 'i':
		return s.readInt()
	default:
		return s.readString()
	}
}

func (s *scanner) finished() bool {
	return s.current >= len(s.data)
}

func (s scanner) peek() byte {
	if s.finished() {
		return 0
	}
	return s.data[s.current]
}

func (s *scanner) match(r byte) bool {
	if s.peek() == r {
		s.current++
		return true
	}
	return false
}

func (s scanner) isDigit() bool {
	return s.peek() >= '0' && s.peek() <= '9'
}

func (s *scanner) number() (int64, error) {
	if !s.isDigit() {
		return 0, fmt.Errorf("%w at offset %d", ErrDigitExpected, s.current)
	}
	var n int64
	for s.isDigit() {
		d := int64(s.peek() - '0')
		if n > (math.MaxInt64-d)/10 {
			return 0, fmt.Errorf("%w at offset %d", ErrNumberRange, s.current)
		}
		n = n*10 + d
		s.current++
	}
	return n, nil
}

func (s *scanner) readInt() (Int, error) {
	s.current++ // consume 'i'
	negative := s.match('-')
	n, err := s.number()
	if err != nil {
		return 0, err
	}
	if !s.match('e') {
		return 0, ErrElementEnd
	}
	if negative {
		n = -n
	}
	return Int(n), nil
}

func (s *scanner) readString() (String, error) {
	length, err := s.number()
	if err != nil {
		return "", err
	}
	if !s.match(':') {
		return "", ErrColonMissing
	}
	if length > int64(len(s.data)-s.current) {
		return "", ErrStringLength
	}
	start := s.current
	s.current += int(length)
	return String(s.data[start:s.current]), nil
}

func (s *scanner) readList() (List, error) {
	s.current++ // consume 'l'
	list := List{}
	for s.peek() != 'e' && !s.finished() {
		el, err := s.next()
		if err != nil {
			return nil, err
		}
		list = append(list, el)
	}
	if !s.match('e') {
		return nil, ErrElementEnd
	}
	return list, nil
}

func (s *scanner) readDict() (Dict, error) {
	s.current++ // consume 'd'
	dict := Dict{}
	for s.peek() != 'e' && !s.finished() {
		k, err := s.readString()
		if err != nil {
			return nil, err
		}
		v, err := s.next()
		if err != nil {
			return nil, err
		}
		dict[string(k)] = v
	}
	if !s.match('e') {
		return nil, ErrElementEnd
	}
	return dict, nil
}
