/*
Package reporter writes a manager's statistics report on a cron schedule.

	r, err := reporter.New(m, reporter.Config{
		Schedule: "@every 30s",
		Output:   os.Stderr,
	})
	if err != nil {
		return err
	}

	r.Start()
	defer func() { <-r.Stop().Done() }()

Schedules accept standard 5-field expressions, a leading seconds field, and
descriptors such as "@hourly" or "@every 10s". A run that is still writing
when the next one is due causes that next run to be skipped.
*/
package reporter
