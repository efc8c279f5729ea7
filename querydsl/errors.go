/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package querydsl

// QueryDslError is raised for malformed DSL shapes the compiler
// cannot make sense of independent of field typing.
type QueryDslError struct{ Msg string }

func (e *QueryDslError) Error() string { return e.Msg }

// ClientError wraps a user-facing mistake (bad operand count, unknown
// operator) distinct from an internal compiler bug.
type ClientError struct{ Msg string }

func (e *ClientError) Error() string { return e.Msg }

// InvalidArgumentError is raised when an operand's Go type does not
// match what the target field or operator expects.
type InvalidArgumentError struct{ Msg string }

func (e *InvalidArgumentError) Error() string { return e.Msg }

// SerialisationError is raised when a literal cannot be parsed into
// the wire form its field's concrete type requires.
type SerialisationError struct{ Msg string }

func (e *SerialisationError) Error() string { return e.Msg }
