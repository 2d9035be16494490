package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflows (
				id UUID PRIMARY KEY,
				company_id VARCHAR(255) NOT NULL,
				trigger VARCHAR(50) NOT NULL,
				action VARCHAR(50) NOT NULL CHECK (action IN ('email', 'sms', 'webhook')),
				settings JSONB NOT NULL DEFAULT '{}',
				name VARCHAR(255) NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflows_company_id ON workflows(company_id);
			CREATE INDEX idx_workflows_company_trigger ON workflows(company_id, trigger);

			CREATE TABLE scheduled_tasks (
				id UUID PRIMARY KEY,
				wf JSONB NOT NULL,
				event JSONB NOT NULL,
				fire_at TIMESTAMP WITH TIME ZONE NOT NULL,
				company_id VARCHAR(255) NOT NULL
			);

			CREATE INDEX idx_scheduled_tasks_fire_at ON scheduled_tasks(fire_at);
			CREATE INDEX idx_scheduled_tasks_company_id ON scheduled_tasks(company_id);

			CREATE TABLE deliveries (
				id UUID PRIMARY KEY,
				wf JSONB NOT NULL,
				event JSONB NOT NULL,
				sent_at TIMESTAMP WITH TIME ZONE NOT NULL,
				company_id VARCHAR(255) NOT NULL
			);

			CREATE INDEX idx_deliveries_company_id ON deliveries(company_id);

			CREATE TABLE action_logs (
				id UUID PRIMARY KEY,
				event_id VARCHAR(255) NOT NULL,
				workflow_id VARCHAR(255) NOT NULL,
				company_id VARCHAR(255) NOT NULL,
				action_type VARCHAR(50) NOT NULL,
				status VARCHAR(50) NOT NULL CHECK (status IN ('success', 'failure')),
				details JSONB NOT NULL DEFAULT '{}',
				logged_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_action_logs_company_id ON action_logs(company_id);
			CREATE INDEX idx_action_logs_event_id ON action_logs(event_id);

			CREATE TABLE processed_events (
				event_id VARCHAR(255) NOT NULL,
				workflow_id VARCHAR(255) NOT NULL,
				processed_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				PRIMARY KEY (event_id, workflow_id)
			);
		`,
	}
}
