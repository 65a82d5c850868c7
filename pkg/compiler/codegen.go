package compiler

import (
	"fmt"
	"strings"
)

// CodeGen walks a bound AST and emits byte-machine instruction text over
// the alphabet > < + - . , [ ]. Every statement fragment starts and ends
// with the data pointer parked on cell 0, so fragments compose by plain
// concatenation.
type CodeGen struct {
	syms    *SymbolTable
	out     strings.Builder
	pointer int // cell the data pointer rests on at this point of emission
	nextTmp int // bump allocator for generator-private cells
}

func newCodeGen(syms *SymbolTable) *CodeGen {
	return &CodeGen{syms: syms, nextTmp: syms.NextFree()}
}

// Generate lowers stmts into a single instruction string. It performs no
// validation of its own; name resolution errors can only surface when
// Generate is called on an AST that skipped Bind.
func Generate(stmts []Stmt, syms *SymbolTable) (string, error) {
	cg := newCodeGen(syms)
	cg.emitIntro()
	for _, stmt := range stmts {
		if err := cg.genStmt(stmt); err != nil {
			return "", err
		}
	}
	cg.moveTo(CellHome)
	return Optimize(cg.out.String()), nil
}

func (cg *CodeGen) emit(s string) {
	cg.out.WriteString(s)
}

// emitIntro clears the scratch cells. They are already zero on a fresh
// tape, but generated programs stay self-contained this way.
func (cg *CodeGen) emitIntro() {
	cg.zeroCell(CellScratchA)
	cg.zeroCell(CellScratchB)
	cg.moveTo(CellHome)
}

// moveTo emits the </> run that walks the pointer to cell.
func (cg *CodeGen) moveTo(cell int) {
	delta := cell - cg.pointer
	if delta > 0 {
		cg.emit(strings.Repeat(">", delta))
	} else if delta < 0 {
		cg.emit(strings.Repeat("<", -delta))
	}
	cg.pointer = cell
}

func (cg *CodeGen) zeroCurrent() {
	cg.emit("[-]")
}

func (cg *CodeGen) zeroCell(cell int) {
	cg.moveTo(cell)
	cg.zeroCurrent()
}

// allocTmp reserves a fresh generator-private cell past every variable.
// Temporaries are never returned to the pool; each use site zeroes the
// cell before and after, so reuse across fragments is safe regardless.
func (cg *CodeGen) allocTmp() int {
	cell := cg.nextTmp
	cg.nextTmp++
	return cell
}

// scratchCell returns one of the two reserved scratch cells not in
// exclude, falling back to a fresh temporary when both are taken.
func (cg *CodeGen) scratchCell(exclude ...int) int {
	for _, candidate := range []int{CellScratchA, CellScratchB} {
		excluded := false
		for _, e := range exclude {
			if candidate == e {
				excluded = true
				break
			}
		}
		if !excluded {
			return candidate
		}
	}
	return cg.allocTmp()
}

func (cg *CodeGen) getCell(name string, line int) (int, error) {
	sym, ok := cg.syms.Lookup(name)
	if !ok {
		return 0, &UndefinedVariable{Line: line, Name: name}
	}
	return sym.Cell, nil
}

// setCell zeroes cell and counts it up to value.
func (cg *CodeGen) setCell(cell int, value int) {
	cg.zeroCell(cell)
	if value > 0 {
		cg.incCell(cell, value)
	}
}

// incCell adjusts cell by amount, choosing between a linear +/- run and
// a scaled loop (count x step + remainder) when the loop is cheaper.
func (cg *CodeGen) incCell(cell int, amount int) {
	if amount == 0 {
		return
	}
	if amount > 0 && cg.tryScaledIncrement(cell, amount, false) {
		return
	}
	if amount < 0 && cg.tryScaledIncrement(cell, -amount, true) {
		return
	}
	cg.linearIncrement(cell, amount)
}

func (cg *CodeGen) linearIncrement(cell int, amount int) {
	if amount == 0 {
		return
	}
	cg.moveTo(cell)
	if amount > 0 {
		cg.emit(strings.Repeat("+", amount))
	} else {
		cg.emit(strings.Repeat("-", -amount))
	}
}

// tryScaledIncrement emits magnitude as loopCount iterations of step
// plus a remainder, driven by a counter in a scratch cell. Returns false
// when no loop shape beats the plain +/- run.
func (cg *CodeGen) tryScaledIncrement(cell int, magnitude int, subtract bool) bool {
	scratch := cg.scratchCell(cell)
	distance := cell - scratch
	if distance < 0 {
		distance = -distance
	}
	if distance == 0 {
		return false
	}
	loopCount, step, remainder, ok := selectScaledIncrement(magnitude, distance)
	if !ok {
		return false
	}
	op := "+"
	if subtract {
		op = "-"
	}
	cg.zeroCell(scratch)
	cg.linearIncrement(scratch, loopCount)
	cg.moveTo(scratch)
	cg.emit("[")
	cg.emit("-")
	cg.moveTo(cell)
	if step > 0 {
		cg.emit(strings.Repeat(op, step))
	}
	cg.moveTo(scratch)
	cg.emit("]")
	cg.moveTo(cell)
	if remainder > 0 {
		amount := remainder
		if subtract {
			amount = -remainder
		}
		cg.linearIncrement(cell, amount)
	}
	return true
}

// selectScaledIncrement picks the cheapest loopCount/step/remainder
// factoring of magnitude, costed against the pointer travel distance.
func selectScaledIncrement(magnitude, distance int) (loopCount, step, remainder int, ok bool) {
	if magnitude <= 0 {
		return 0, 0, 0, false
	}
	bestCost := -1
	maxLoops := 16
	if magnitude < maxLoops {
		maxLoops = magnitude
	}
	for count := 2; count <= maxLoops; count++ {
		s := magnitude / count
		if s == 0 {
			break
		}
		rem := magnitude - count*s
		cost := count + s + rem + 4*distance + 5
		if bestCost < 0 || cost < bestCost {
			bestCost, loopCount, step, remainder = cost, count, s, rem
		}
	}
	if bestCost < 0 || bestCost >= magnitude {
		return 0, 0, 0, false
	}
	return loopCount, step, remainder, true
}

// copyCell copies source into target non-destructively, going through a
// scratch cell to restore the source afterwards. Target is zeroed first.
func (cg *CodeGen) copyCell(source, target int) {
	if source == target {
		return
	}
	tmp := cg.scratchCell(source, target)
	cg.zeroCell(tmp)
	cg.zeroCell(target)
	cg.moveTo(source)
	cg.emit("[")
	cg.emit("-")
	cg.moveTo(target)
	cg.emit("+")
	cg.moveTo(tmp)
	cg.emit("+")
	cg.moveTo(source)
	cg.emit("]")
	cg.moveTo(tmp)
	cg.emit("[")
	cg.emit("-")
	cg.moveTo(source)
	cg.emit("+")
	cg.moveTo(tmp)
	cg.emit("]")
	cg.moveTo(CellHome)
}

// transferAdd adds source into target while preserving source via a
// scratch cell (the destructive drain is undone after the transfer).
func (cg *CodeGen) transferAdd(source, target int) {
	cg.transfer(source, target, "+")
}

// transferSub subtracts source from target while preserving source.
func (cg *CodeGen) transferSub(source, target int) {
	cg.transfer(source, target, "-")
}

func (cg *CodeGen) transfer(source, target int, op string) {
	tmp := cg.scratchCell(source, target)
	cg.zeroCell(tmp)
	cg.moveTo(source)
	cg.emit("[")
	cg.emit("-")
	cg.moveTo(target)
	cg.emit(op)
	cg.moveTo(tmp)
	cg.emit("+")
	cg.moveTo(source)
	cg.emit("]")
	cg.moveTo(tmp)
	cg.emit("[")
	cg.emit("-")
	cg.moveTo(source)
	cg.emit("+")
	cg.moveTo(tmp)
	cg.emit("]")
	cg.moveTo(CellHome)
}

// isZero leaves flag=1 when cell is zero, flag=0 otherwise. cell is
// preserved.
func (cg *CodeGen) isZero(cell, flag int) {
	tmp := cg.allocTmp()
	cg.setCell(flag, 1)
	cg.zeroCell(tmp)
	cg.copyCell(cell, tmp)
	cg.moveTo(tmp)
	cg.emit("[")
	cg.moveTo(tmp)
	cg.emit("-")
	cg.moveTo(flag)
	cg.emit("[-]")
	cg.moveTo(tmp)
	cg.emit("]")
	cg.zeroCell(tmp)
	cg.moveTo(CellHome)
}

// subtractDivisorIfPossible subtracts divisor from remainder when
// remainder >= divisor, leaving successFlag=1; otherwise remainder is
// restored from a backup and successFlag ends 0. The comparison is built
// from paired decrement loops: the divisor copy counts down while the
// remainder is probed for zero each round.
func (cg *CodeGen) subtractDivisorIfPossible(remainder, divisor, successFlag int) {
	remainderBackup := cg.allocTmp()
	divisorCopy := cg.allocTmp()
	zeroFlag := cg.allocTmp()
	tmpFlag := cg.allocTmp()
	failureFlag := cg.allocTmp()

	cg.setCell(successFlag, 1)
	cg.zeroCell(failureFlag)
	cg.zeroCell(remainderBackup)
	cg.copyCell(remainder, remainderBackup)
	cg.zeroCell(divisorCopy)
	cg.copyCell(divisor, divisorCopy)

	cg.moveTo(divisorCopy)
	cg.emit("[")
	cg.moveTo(divisorCopy)
	cg.emit("-")

	// Ran out of remainder before the divisor drained: mark failure.
	cg.isZero(remainder, zeroFlag)
	cg.moveTo(zeroFlag)
	cg.emit("[")
	cg.moveTo(zeroFlag)
	cg.emit("-")
	cg.zeroCell(successFlag)
	cg.setCell(failureFlag, 1)
	cg.moveTo(divisorCopy)
	cg.emit("[-]")
	cg.moveTo(zeroFlag)
	cg.emit("]")
	cg.zeroCell(zeroFlag)

	// Still succeeding: take one unit off the remainder.
	cg.zeroCell(tmpFlag)
	cg.copyCell(successFlag, tmpFlag)
	cg.moveTo(tmpFlag)
	cg.emit("[")
	cg.moveTo(tmpFlag)
	cg.emit("-")
	cg.moveTo(remainder)
	cg.emit("-")
	cg.moveTo(tmpFlag)
	cg.emit("]")
	cg.zeroCell(tmpFlag)

	cg.moveTo(divisorCopy)
	cg.emit("]")

	// On failure the partially consumed remainder is restored.
	cg.moveTo(failureFlag)
	cg.emit("[")
	cg.moveTo(failureFlag)
	cg.emit("-")
	cg.zeroCell(remainder)
	cg.copyCell(remainderBackup, remainder)
	cg.moveTo(failureFlag)
	cg.emit("]")

	cg.zeroCell(remainderBackup)
	cg.zeroCell(divisorCopy)
	cg.zeroCell(zeroFlag)
	cg.zeroCell(tmpFlag)
	cg.zeroCell(failureFlag)
	cg.moveTo(CellHome)
}

// assignExpr stores expr into targetCell, zeroing it first. Assigning a
// variable to itself is a no-op.
func (cg *CodeGen) assignExpr(targetCell int, expr Expr) error {
	switch e := expr.(type) {
	case *Literal:
		cg.zeroCell(targetCell)
		cg.incCell(targetCell, int(e.Value))
	case *CharLiteral:
		cg.zeroCell(targetCell)
		cg.incCell(targetCell, int(e.Value))
	case *VarRef:
		sourceCell, err := cg.getCell(e.Name, e.Line)
		if err != nil {
			return err
		}
		if sourceCell == targetCell {
			cg.moveTo(CellHome)
			return nil
		}
		cg.zeroCell(targetCell)
		cg.copyCell(sourceCell, targetCell)
	default:
		return fmt.Errorf("unsupported expression type %T", expr)
	}
	cg.moveTo(CellHome)
	return nil
}

// addExpr adds (or subtracts) expr into targetCell. Variable operands
// use the source-preserving transfer loops.
func (cg *CodeGen) addExpr(targetCell int, expr Expr, subtract bool) error {
	switch e := expr.(type) {
	case *Literal:
		cg.incLiteral(targetCell, int(e.Value), subtract)
	case *CharLiteral:
		cg.incLiteral(targetCell, int(e.Value), subtract)
	case *VarRef:
		sourceCell, err := cg.getCell(e.Name, e.Line)
		if err != nil {
			return err
		}
		if subtract {
			cg.transferSub(sourceCell, targetCell)
		} else {
			cg.transferAdd(sourceCell, targetCell)
		}
	default:
		return fmt.Errorf("unsupported expression type %T", expr)
	}
	cg.moveTo(CellHome)
	return nil
}

func (cg *CodeGen) incLiteral(cell, value int, subtract bool) {
	if subtract {
		value = -value
	}
	cg.incCell(cell, value)
}

// multiplyLiteral multiplies targetCell by a compile-time constant via
// repeated addition off a drained copy of the target.
func (cg *CodeGen) multiplyLiteral(targetCell, literal int) {
	if literal == 0 {
		cg.zeroCell(targetCell)
		cg.moveTo(CellHome)
		return
	}
	if literal == 1 {
		cg.moveTo(CellHome)
		return
	}
	sourceCopy := cg.allocTmp()
	cg.zeroCell(sourceCopy)
	cg.copyCell(targetCell, sourceCopy)
	cg.zeroCell(targetCell)
	cg.moveTo(sourceCopy)
	cg.emit("[")
	cg.moveTo(sourceCopy)
	cg.emit("-")
	cg.incCell(targetCell, literal)
	cg.moveTo(sourceCopy)
	cg.emit("]")
	cg.zeroCell(sourceCopy)
	cg.moveTo(CellHome)
}

// multiplyCell multiplies targetCell by operandCell: repeated
// destructive addition driven by a multiplier copy decremented to zero.
func (cg *CodeGen) multiplyCell(targetCell, operandCell int) {
	multiplicand := cg.allocTmp()
	multiplier := cg.allocTmp()

	cg.zeroCell(multiplicand)
	cg.copyCell(targetCell, multiplicand)
	cg.zeroCell(multiplier)
	cg.copyCell(operandCell, multiplier)

	cg.zeroCell(targetCell)

	cg.moveTo(multiplier)
	cg.emit("[")
	cg.moveTo(multiplier)
	cg.emit("-")
	cg.transferAdd(multiplicand, targetCell)
	cg.moveTo(multiplier)
	cg.emit("]")

	cg.zeroCell(multiplier)
	cg.zeroCell(multiplicand)
	cg.moveTo(CellHome)
}

func (cg *CodeGen) divideLiteral(targetCell, literal int) {
	divisorCell := cg.allocTmp()
	cg.setCell(divisorCell, literal)
	cg.divideCells(targetCell, divisorCell)
	cg.zeroCell(divisorCell)
	cg.moveTo(CellHome)
}

// divideCells computes targetCell /= divisorCell by guarded repeated
// subtraction. Division by zero sets the quotient to 0; that is policy,
// not an error.
func (cg *CodeGen) divideCells(targetCell, divisorCell int) {
	executeFlag := cg.allocTmp()
	cg.setCell(executeFlag, 1)

	divisorZeroFlag := cg.allocTmp()
	cg.isZero(divisorCell, divisorZeroFlag)
	cg.moveTo(divisorZeroFlag)
	cg.emit("[")
	cg.moveTo(divisorZeroFlag)
	cg.emit("-")
	cg.zeroCell(targetCell)
	cg.moveTo(executeFlag)
	cg.emit("[-]")
	cg.moveTo(divisorZeroFlag)
	cg.emit("]")
	cg.zeroCell(divisorZeroFlag)

	remainderCell := cg.allocTmp()
	successFlag := cg.allocTmp()
	loopFlag := cg.allocTmp()

	cg.moveTo(executeFlag)
	cg.emit("[")
	cg.moveTo(executeFlag)
	cg.emit("-")

	cg.zeroCell(remainderCell)
	cg.copyCell(targetCell, remainderCell)
	cg.zeroCell(targetCell)

	cg.setCell(loopFlag, 1)
	cg.moveTo(loopFlag)
	cg.emit("[")
	cg.moveTo(loopFlag)
	cg.emit("-")
	cg.subtractDivisorIfPossible(remainderCell, divisorCell, successFlag)
	cg.moveTo(successFlag)
	cg.emit("[")
	cg.moveTo(successFlag)
	cg.emit("-")
	cg.incCell(targetCell, 1)
	cg.moveTo(loopFlag)
	cg.emit("+")
	cg.moveTo(successFlag)
	cg.emit("]")
	cg.moveTo(successFlag)
	cg.emit("[-]")
	cg.moveTo(loopFlag)
	cg.emit("]")

	cg.zeroCell(loopFlag)
	cg.zeroCell(remainderCell)
	cg.zeroCell(successFlag)
	cg.moveTo(executeFlag)
	cg.emit("[-]")
	cg.moveTo(executeFlag)
	cg.emit("]")

	cg.zeroCell(executeFlag)
	cg.moveTo(CellHome)
}

// printDigit prints the digit held in digitCell (0-9) by shifting it
// into ASCII, emitting it, and shifting back.
func (cg *CodeGen) printDigit(digitCell int) {
	cg.incCell(digitCell, '0')
	cg.moveTo(digitCell)
	cg.emit(".")
	cg.incCell(digitCell, -'0')
	cg.moveTo(CellHome)
}

// genPrintDec prints cell as its minimal decimal digit sequence: no
// leading zeros, and exactly "0" when the value is zero. The value is
// split into hundreds/tens/ones by literal division, and a printed-flag
// cell suppresses leading zeros.
func (cg *CodeGen) genPrintDec(cell int) {
	work := cg.allocTmp()
	cg.zeroCell(work)
	cg.copyCell(cell, work)

	hundreds := cg.allocTmp()
	cg.zeroCell(hundreds)
	cg.copyCell(work, hundreds)
	cg.divideLiteral(hundreds, 100)

	remainder := cg.allocTmp()
	cg.zeroCell(remainder)
	cg.copyCell(work, remainder)

	tmp := cg.allocTmp()
	cg.zeroCell(tmp)
	cg.copyCell(hundreds, tmp)
	cg.multiplyLiteral(tmp, 100)
	cg.transferSub(tmp, remainder)
	cg.zeroCell(tmp)

	tens := cg.allocTmp()
	cg.zeroCell(tens)
	cg.copyCell(remainder, tens)
	cg.divideLiteral(tens, 10)

	tmp2 := cg.allocTmp()
	cg.zeroCell(tmp2)
	cg.copyCell(tens, tmp2)
	cg.multiplyLiteral(tmp2, 10)
	cg.transferSub(tmp2, remainder)
	cg.zeroCell(tmp2)

	ones := remainder

	printedFlag := cg.allocTmp()
	cg.zeroCell(printedFlag)

	hundredsCopy := cg.allocTmp()
	cg.zeroCell(hundredsCopy)
	cg.copyCell(hundreds, hundredsCopy)
	cg.moveTo(hundredsCopy)
	cg.emit("[")
	cg.moveTo(hundredsCopy)
	cg.emit("-")
	cg.printDigit(hundreds)
	cg.setCell(printedFlag, 1)
	cg.moveTo(hundredsCopy)
	cg.emit("[-]")
	cg.moveTo(hundredsCopy)
	cg.emit("]")
	cg.zeroCell(hundredsCopy)

	// The tens digit prints when it is non-zero or a hundreds digit
	// already printed.
	shouldPrintTens := cg.allocTmp()
	cg.zeroCell(shouldPrintTens)
	cg.copyCell(printedFlag, shouldPrintTens)

	tensCopy := cg.allocTmp()
	cg.zeroCell(tensCopy)
	cg.copyCell(tens, tensCopy)
	cg.moveTo(tensCopy)
	cg.emit("[")
	cg.moveTo(tensCopy)
	cg.emit("-")
	cg.setCell(shouldPrintTens, 1)
	cg.moveTo(tensCopy)
	cg.emit("[-]")
	cg.moveTo(tensCopy)
	cg.emit("]")
	cg.zeroCell(tensCopy)

	cg.moveTo(shouldPrintTens)
	cg.emit("[")
	cg.moveTo(shouldPrintTens)
	cg.emit("-")
	cg.printDigit(tens)
	cg.setCell(printedFlag, 1)
	cg.moveTo(shouldPrintTens)
	cg.emit("]")
	cg.zeroCell(shouldPrintTens)

	cg.printDigit(ones)

	cg.zeroCell(hundreds)
	cg.zeroCell(tens)
	cg.zeroCell(ones)
	cg.zeroCell(work)
	cg.zeroCell(printedFlag)
	cg.moveTo(CellHome)
}

// genIf lowers the conditional. Branches run under bracket loops that
// drain their driver cell, so the condition variable is copied to
// scratch first and the copy is what gets destroyed; a second flag cell
// arms the else branch.
func (cg *CodeGen) genIf(stmt *IfStmt) error {
	condCell, err := cg.getCell(stmt.Cond, stmt.Line)
	if err != nil {
		return err
	}
	condCopy := cg.scratchCell(condCell)
	elseFlag := cg.scratchCell(condCell, condCopy)
	cg.zeroCell(condCopy)
	cg.zeroCell(elseFlag)
	cg.copyCell(condCell, condCopy)
	cg.incCell(elseFlag, 1)

	cg.moveTo(condCopy)
	cg.emit("[")
	cg.emit("-")
	cg.moveTo(elseFlag)
	cg.emit("[-]")
	if err := cg.genBlock(stmt.Then); err != nil {
		return err
	}
	cg.moveTo(condCopy)
	cg.emit("]")

	if len(stmt.Else) > 0 {
		cg.moveTo(elseFlag)
		cg.emit("[")
		cg.emit("-")
		if err := cg.genBlock(stmt.Else); err != nil {
			return err
		}
		cg.moveTo(elseFlag)
		cg.emit("]")
	} else {
		cg.zeroCell(elseFlag)
	}

	cg.zeroCell(condCopy)
	cg.zeroCell(elseFlag)
	cg.moveTo(CellHome)
	return nil
}

// genFor lowers the counted loop: the iterator starts at the from value
// and the body repeats while iterator != end, recomputing the difference
// cell once per iteration. The iterator is bumped after the body, except
// when the body itself already brought it to the end bound. The end
// bound is captured once at loop entry.
func (cg *CodeGen) genFor(stmt *ForStmt) error {
	targetCell, err := cg.getCell(stmt.Name, stmt.Line)
	if err != nil {
		return err
	}
	if err := cg.assignExpr(targetCell, stmt.Start); err != nil {
		return err
	}

	endCell := cg.allocTmp()
	diffCell := cg.allocTmp()
	if err := cg.assignExpr(endCell, stmt.End); err != nil {
		return err
	}

	computeDiff := func() {
		cg.zeroCell(diffCell)
		cg.copyCell(endCell, diffCell)
		cg.transferSub(targetCell, diffCell)
	}
	computeDiff()

	zeroFlag := cg.allocTmp()
	bumpFlag := cg.allocTmp()

	cg.moveTo(diffCell)
	cg.emit("[")
	if err := cg.genBlock(stmt.Body); err != nil {
		return err
	}
	computeDiff()

	// Bump the iterator only while it has not reached the bound yet.
	cg.isZero(diffCell, zeroFlag)
	cg.setCell(bumpFlag, 1)
	cg.transferSub(zeroFlag, bumpFlag)
	cg.moveTo(bumpFlag)
	cg.emit("[")
	cg.moveTo(bumpFlag)
	cg.emit("-")
	cg.incCell(targetCell, 1)
	computeDiff()
	cg.moveTo(bumpFlag)
	cg.emit("]")
	cg.zeroCell(zeroFlag)
	cg.zeroCell(bumpFlag)

	cg.moveTo(diffCell)
	cg.emit("]")

	cg.zeroCell(endCell)
	cg.zeroCell(diffCell)
	cg.moveTo(CellHome)
	return nil
}

func (cg *CodeGen) genBlock(stmts []Stmt) error {
	for _, stmt := range stmts {
		if err := cg.genStmt(stmt); err != nil {
			return err
		}
	}
	cg.moveTo(CellHome)
	return nil
}

func (cg *CodeGen) genStmt(s Stmt) error {
	switch n := s.(type) {
	case *DeclareStmt:
		cell, err := cg.getCell(n.Name, n.Line)
		if err != nil {
			return err
		}
		return cg.assignExpr(cell, n.Init)

	case *AssignStmt:
		cell, err := cg.getCell(n.Name, n.Line)
		if err != nil {
			return err
		}
		return cg.assignExpr(cell, n.Expr)

	case *AddStmt:
		cell, err := cg.getCell(n.Name, n.Line)
		if err != nil {
			return err
		}
		return cg.addExpr(cell, n.Expr, false)

	case *SubStmt:
		cell, err := cg.getCell(n.Name, n.Line)
		if err != nil {
			return err
		}
		return cg.addExpr(cell, n.Expr, true)

	case *MulStmt:
		cell, err := cg.getCell(n.Name, n.Line)
		if err != nil {
			return err
		}
		switch e := n.Expr.(type) {
		case *Literal:
			cg.multiplyLiteral(cell, int(e.Value))
		case *CharLiteral:
			cg.multiplyLiteral(cell, int(e.Value))
		case *VarRef:
			operandCell, err := cg.getCell(e.Name, e.Line)
			if err != nil {
				return err
			}
			cg.multiplyCell(cell, operandCell)
		default:
			return fmt.Errorf("unsupported expression type %T", n.Expr)
		}
		return nil

	case *DivStmt:
		cell, err := cg.getCell(n.Name, n.Line)
		if err != nil {
			return err
		}
		switch e := n.Expr.(type) {
		case *Literal:
			cg.divideLiteral(cell, int(e.Value))
		case *CharLiteral:
			cg.divideLiteral(cell, int(e.Value))
		case *VarRef:
			operandCell, err := cg.getCell(e.Name, e.Line)
			if err != nil {
				return err
			}
			cg.divideCells(cell, operandCell)
		default:
			return fmt.Errorf("unsupported expression type %T", n.Expr)
		}
		return nil

	case *PrintCharStmt:
		return cg.genOutput(n.Name, n.Line)
	case *PrintNumStmt:
		return cg.genOutput(n.Name, n.Line)
	case *PrintDecStmt:
		cell, err := cg.getCell(n.Name, n.Line)
		if err != nil {
			return err
		}
		cg.genPrintDec(cell)
		return nil

	case *InputCharStmt:
		return cg.genInput(n.Name, n.Line)
	case *InputNumStmt:
		return cg.genInput(n.Name, n.Line)

	case *IfStmt:
		return cg.genIf(n)
	case *ForStmt:
		return cg.genFor(n)

	default:
		return fmt.Errorf("unhandled statement type %T", s)
	}
}

// genOutput emits the byte in the named cell. print_char and print_num
// lower identically; the kind label only matters to front ends.
func (cg *CodeGen) genOutput(name string, line int) error {
	cell, err := cg.getCell(name, line)
	if err != nil {
		return err
	}
	cg.moveTo(cell)
	cg.emit(".")
	cg.moveTo(CellHome)
	return nil
}

func (cg *CodeGen) genInput(name string, line int) error {
	cell, err := cg.getCell(name, line)
	if err != nil {
		return err
	}
	cg.moveTo(cell)
	cg.emit(",")
	cg.moveTo(CellHome)
	return nil
}
