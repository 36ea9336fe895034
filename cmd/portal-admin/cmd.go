package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/noah-isme/course-portal-api/internal/models"
	"github.com/noah-isme/course-portal-api/pkg/database"
)

const cliActor = "portal-admin"

var (
	readPasswordFunc = term.ReadPassword      // mockable
	gooseRunFunc     = database.RunMigrations // mockable

	errHelp = errors.New("help provided")
)

type adminAccounts interface {
	RegisterAdmin(ctx context.Context, req models.RegisterAdminRequest) (*models.PrincipalInfo, error)
	ResetPassword(ctx context.Context, role models.Role, id, password string) error
}

type gradeWriter interface {
	SetGrade(ctx context.Context, req models.SetGradeRequest, actorID string) error
}

type auditReader interface {
	ListByResource(ctx context.Context, resource, resourceID string) ([]models.AuditLog, error)
}

type commandLine struct {
	accounts   adminAccounts
	grades     gradeWriter
	audits     auditReader
	db         *sqlx.DB
	migrations fs.FS
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  add-admin -id ID -name NAME [-reset]              - create an administrator or reset its password")
	fmt.Fprintln(cli.out, "  grade -student ID -course ID -grade SCORE          - record a grade (0-100) on a selection")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                             - run a goose command (up, down, status, version, redo, ...)")
	fmt.Fprintln(cli.out, "  history -resource course|message|selection -id ID  - show the audit trail of a resource")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addAdminCmd := flag.NewFlagSet("add-admin", flag.ContinueOnError)
	addAdminCmd.SetOutput(cli.out)
	addAdminID := addAdminCmd.String("id", "", "The administrator id. The password will be prompted next.")
	addAdminName := addAdminCmd.String("name", "", "The administrator display name.")
	addAdminReset := addAdminCmd.Bool("reset", false, "Reset the password of an existing administrator instead.")

	gradeCmd := flag.NewFlagSet("grade", flag.ContinueOnError)
	gradeCmd.SetOutput(cli.out)
	gradeStudent := gradeCmd.String("student", "", "The student id.")
	gradeCourse := gradeCmd.String("course", "", "The course id.")
	gradeScore := gradeCmd.String("grade", "", "The score, between 0 and 100.")

	historyCmd := flag.NewFlagSet("history", flag.ContinueOnError)
	historyCmd.SetOutput(cli.out)
	historyResource := historyCmd.String("resource", "", "The resource kind.")
	historyID := historyCmd.String("id", "", "The resource id.")

	switch args[1] {
	case "add-admin":
		if err := addAdminCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *addAdminID == "" || (!*addAdminReset && *addAdminName == "") {
			addAdminCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addAdminCmd.Usage()
			return errHelp
		}
		if *addAdminReset {
			return cli.resetPassword(ctx, *addAdminID, string(pwd))
		}
		return cli.addAdmin(ctx, *addAdminID, *addAdminName, string(pwd))

	case "grade":
		if err := gradeCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *gradeStudent == "" || *gradeCourse == "" || *gradeScore == "" {
			gradeCmd.Usage()
			return errHelp
		}
		score, err := strconv.ParseFloat(*gradeScore, 64)
		if err != nil {
			return fmt.Errorf("grade must be a number (got '%s')", *gradeScore)
		}
		return cli.setGrade(ctx, *gradeStudent, *gradeCourse, score)

	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return gooseRunFunc(ctx, cli.db, cli.migrations, args[2], args[3:]...)

	case "history":
		if err := historyCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *historyResource == "" || *historyID == "" {
			historyCmd.Usage()
			return errHelp
		}
		return cli.history(ctx, *historyResource, *historyID)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) addAdmin(ctx context.Context, id, name, password string) error {
	info, err := cli.accounts.RegisterAdmin(ctx, models.RegisterAdminRequest{AdminID: id, Name: name, Password: password})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "administrator %s (%s) created\n", info.ID, info.Name)
	return nil
}

func (cli *commandLine) resetPassword(ctx context.Context, id, password string) error {
	if err := cli.accounts.ResetPassword(ctx, models.RoleAdmin, id, password); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "password of administrator %s updated\n", id)
	return nil
}

func (cli *commandLine) setGrade(ctx context.Context, studentID, courseID string, grade float64) error {
	req := models.SetGradeRequest{StudentID: studentID, CourseID: courseID, Grade: grade}
	if err := cli.grades.SetGrade(ctx, req, cliActor); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "grade %s recorded for %s in %s\n", models.NewGrade(grade), studentID, courseID)
	return nil
}

func (cli *commandLine) history(ctx context.Context, resource, id string) error {
	logs, err := cli.audits.ListByResource(ctx, resource, id)
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		fmt.Fprintf(cli.out, "no audit entries for %s %s\n", resource, id)
		return nil
	}
	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tACTION\tACTOR\tROLE")
	for _, entry := range logs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", entry.CreatedAt.UTC().Format(time.RFC3339), entry.Action, deref(entry.ActorID), deref(entry.ActorRole))
	}
	return w.Flush()
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
